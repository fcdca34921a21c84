package service

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/clock"
	"github.com/smallbiznis/roomledger/internal/config"
	obsmetrics "github.com/smallbiznis/roomledger/internal/observability/metrics"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	roomdomain "github.com/smallbiznis/roomledger/internal/room/domain"
	"github.com/smallbiznis/roomledger/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxOtherImages = 10

var allowedDocumentExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Cfg          config.Config
	Repo         domain.Repository
	RoomRepo     roomdomain.Repository
	PropertyRepo propertydomain.Repository
	Store        domain.DocumentStore
	Metrics      *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	maxUploadBytes int64
	repo           domain.Repository
	roomRepo       roomdomain.Repository
	propertyRepo   propertydomain.Repository
	store          domain.DocumentStore
	metrics        *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("tenant.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		maxUploadBytes: p.Cfg.UploadMaxBytes,
		repo:           p.Repo,
		roomRepo:       p.RoomRepo,
		propertyRepo:   p.PropertyRepo,
		store:          p.Store,
		metrics:        p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTenantRequest) (domain.Tenant, error) {
	now := s.clock.Now()
	tenant := domain.Tenant{
		ID:             s.genID.Generate(),
		PropertyID:     req.PropertyID,
		AssignedRoomID: req.AssignedRoomID,
		AadharPhoto:    strings.TrimSpace(req.AadharPhoto),
		OtherImages:    datatypes.NewJSONSlice(compact(req.OtherImages)),
		IsActive:       req.IsActive == nil || *req.IsActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var err error
	if tenant.Name, err = normalizeName(req.Name); err != nil {
		return domain.Tenant{}, err
	}
	if tenant.Email, err = normalizeEmail(req.Email); err != nil {
		return domain.Tenant{}, err
	}
	if tenant.MobileNumber, err = normalizeMobile(req.MobileNumber); err != nil {
		return domain.Tenant{}, err
	}
	tenant.TotalPerson = 1
	if req.TotalPerson != nil {
		if *req.TotalPerson < 1 {
			return domain.Tenant{}, domain.ErrInvalidTotalPerson
		}
		tenant.TotalPerson = *req.TotalPerson
	}
	if req.MoveInDate.IsZero() {
		return domain.Tenant{}, domain.ErrInvalidMoveInDate
	}
	tenant.MoveInDate = dateOnly(req.MoveInDate)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := s.propertyRepo.FindByID(ctx, tx, req.PropertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return propertydomain.ErrNotFound
		}
		room, err := s.roomRepo.FindByID(ctx, tx, req.AssignedRoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return roomdomain.ErrNotFound
		}
		if room.PropertyID != property.ID {
			return domain.ErrRoomPropertyMismatch
		}

		if tenant.IsActive {
			current, err := s.repo.FindActiveByRoom(ctx, tx, room.ID, 0)
			if err != nil {
				return err
			}
			if current != nil {
				return domain.ErrRoomOccupied
			}
		}

		if err := s.repo.Insert(ctx, tx, &tenant); err != nil {
			return err
		}
		if tenant.IsActive {
			return s.roomRepo.SetOccupied(ctx, tx, room.ID, true, now)
		}
		return nil
	})
	if err != nil {
		return domain.Tenant{}, err
	}

	s.log.Info("tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("room_id", tenant.AssignedRoomID.String()),
		zap.Bool("active", tenant.IsActive),
	)
	return tenant, nil
}

func (s *Service) CreateWithDocuments(ctx context.Context, req domain.CreateTenantRequest, docs domain.Documents) (domain.Tenant, error) {
	if len(docs.OtherImages) > maxOtherImages {
		return domain.Tenant{}, domain.ErrTooManyDocuments
	}
	uploads := make([]domain.Upload, 0, len(docs.OtherImages)+1)
	if docs.AadharPhoto != nil {
		uploads = append(uploads, *docs.AadharPhoto)
	}
	uploads = append(uploads, docs.OtherImages...)
	for _, upload := range uploads {
		if err := s.checkUpload(upload); err != nil {
			return domain.Tenant{}, err
		}
	}

	folder := fmt.Sprintf("tenants/%s", req.AssignedRoomID)
	saved := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		p, err := s.save(ctx, folder, upload)
		if err != nil {
			s.discard(ctx, saved)
			return domain.Tenant{}, err
		}
		saved = append(saved, p)
	}

	rest := saved
	if docs.AadharPhoto != nil {
		req.AadharPhoto = saved[0]
		rest = saved[1:]
	}
	req.OtherImages = append(slices.Clone(req.OtherImages), rest...)

	tenant, err := s.Create(ctx, req)
	if err != nil {
		s.discard(ctx, saved)
		return domain.Tenant{}, err
	}
	s.metrics.RecordDocuments(ctx, len(saved))
	return tenant, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTenantRequest) ([]domain.Tenant, error) {
	return s.list(ctx, domain.ListTenantFilter{IsActive: req.IsActive}, req)
}

func (s *Service) ListByProperty(ctx context.Context, propertyID snowflake.ID, req domain.ListTenantRequest) ([]domain.Tenant, error) {
	property, err := s.propertyRepo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, propertydomain.ErrNotFound
	}
	return s.list(ctx, domain.ListTenantFilter{PropertyID: &propertyID, IsActive: req.IsActive}, req)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}
	return *tenant, nil
}

func (s *Service) GetByRoom(ctx context.Context, roomID snowflake.ID) (domain.Tenant, error) {
	room, err := s.roomRepo.FindByID(ctx, s.db, roomID)
	if err != nil {
		return domain.Tenant{}, err
	}
	if room == nil {
		return domain.Tenant{}, roomdomain.ErrNotFound
	}
	tenant, err := s.repo.FindActiveByRoom(ctx, s.db, roomID, 0)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNoTenantForRoom
	}
	return *tenant, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTenantRequest) (domain.Tenant, error) {
	var (
		updated domain.Tenant
		orphans []string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := s.repo.FindByID(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if tenant == nil {
			return domain.ErrNotFound
		}
		before := tenant.Documents()
		wasActive := tenant.IsActive

		if err := applyUpdate(tenant, req); err != nil {
			return err
		}
		now := s.clock.Now()
		tenant.UpdatedAt = now

		if tenant.IsActive != wasActive {
			if tenant.IsActive {
				current, err := s.repo.FindActiveByRoom(ctx, tx, tenant.AssignedRoomID, tenant.ID)
				if err != nil {
					return err
				}
				if current != nil {
					return domain.ErrRoomOccupied
				}
			}
			if err := s.roomRepo.SetOccupied(ctx, tx, tenant.AssignedRoomID, tenant.IsActive, now); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, tx, tenant); err != nil {
			return err
		}

		after := tenant.Documents()
		var dropped []string
		for _, p := range before {
			if !slices.Contains(after, p) {
				dropped = append(dropped, p)
			}
		}
		if orphans, err = s.unreferenced(ctx, tx, dropped, tenant.ID); err != nil {
			return err
		}
		updated = *tenant
		return nil
	})
	if err != nil {
		return domain.Tenant{}, err
	}

	s.discard(ctx, orphans)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	var documents []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if tenant == nil {
			return domain.ErrNotFound
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		if documents, err = s.unreferenced(ctx, tx, tenant.Documents(), id); err != nil {
			return err
		}
		if tenant.IsActive {
			return s.roomRepo.SetOccupied(ctx, tx, tenant.AssignedRoomID, false, s.clock.Now())
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discard(ctx, documents)
	s.log.Info("tenant deleted", zap.String("tenant_id", id.String()))
	return nil
}

func (s *Service) list(ctx context.Context, filter domain.ListTenantFilter, req domain.ListTenantRequest) ([]domain.Tenant, error) {
	tenants, err := s.repo.List(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return nil, err
	}
	if tenants == nil {
		tenants = []domain.Tenant{}
	}
	return tenants, nil
}

func (s *Service) checkUpload(upload domain.Upload) error {
	if upload.Open == nil || !allowedDocumentExts[strings.ToLower(filepath.Ext(upload.Filename))] {
		return domain.ErrInvalidDocument
	}
	if upload.Size <= 0 {
		return domain.ErrInvalidDocument
	}
	if s.maxUploadBytes > 0 && upload.Size > s.maxUploadBytes {
		return domain.ErrDocumentTooLarge
	}
	return nil
}

func (s *Service) save(ctx context.Context, folder string, upload domain.Upload) (string, error) {
	r, err := upload.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()
	return s.store.Save(ctx, folder, upload.Filename, r)
}

// unreferenced filters paths down to those no tenant other than owner
// still points at.
func (s *Service) unreferenced(ctx context.Context, tx *gorm.DB, paths []string, owner snowflake.ID) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	others, err := s.repo.ListReferencing(ctx, tx, paths, owner)
	if err != nil {
		return nil, err
	}
	shared := make(map[string]bool)
	for _, other := range others {
		for _, p := range other.Documents() {
			shared[p] = true
		}
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !shared[p] {
			out = append(out, p)
		}
	}
	if kept := len(paths) - len(out); kept > 0 {
		s.log.Warn("keeping tenant documents still referenced elsewhere",
			zap.String("tenant_id", owner.String()),
			zap.Int("count", kept),
		)
	}
	return out, nil
}

func (s *Service) discard(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	if err := s.store.Remove(ctx, paths...); err != nil {
		s.log.Warn("failed to remove tenant documents", zap.Error(err), zap.Int("count", len(paths)))
	}
}

func applyUpdate(tenant *domain.Tenant, req domain.UpdateTenantRequest) error {
	var err error
	if req.Name != nil {
		if tenant.Name, err = normalizeName(*req.Name); err != nil {
			return err
		}
	}
	if req.Email != nil {
		if tenant.Email, err = normalizeEmail(*req.Email); err != nil {
			return err
		}
	}
	if req.MobileNumber != nil {
		if tenant.MobileNumber, err = normalizeMobile(*req.MobileNumber); err != nil {
			return err
		}
	}
	if req.TotalPerson != nil {
		if *req.TotalPerson < 1 {
			return domain.ErrInvalidTotalPerson
		}
		tenant.TotalPerson = *req.TotalPerson
	}
	if req.AadharPhoto != nil {
		tenant.AadharPhoto = strings.TrimSpace(*req.AadharPhoto)
	}
	if req.OtherImages != nil {
		tenant.OtherImages = datatypes.NewJSONSlice(compact(*req.OtherImages))
	}
	if req.MoveInDate != nil {
		if req.MoveInDate.IsZero() {
			return domain.ErrInvalidMoveInDate
		}
		tenant.MoveInDate = dateOnly(*req.MoveInDate)
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}
	return nil
}

func normalizeName(value string) (string, error) {
	name := strings.TrimSpace(value)
	if name == "" || len(name) > 255 {
		return "", domain.ErrInvalidName
	}
	return name, nil
}

func normalizeEmail(value string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(value))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || len(email) > 255 {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

func normalizeMobile(value string) (string, error) {
	mobile := strings.TrimSpace(value)
	if mobile == "" || len(mobile) > 15 {
		return "", domain.ErrInvalidMobileNumber
	}
	return mobile, nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

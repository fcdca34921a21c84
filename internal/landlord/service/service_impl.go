package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/auth/password"
	"github.com/smallbiznis/roomledger/internal/auth/token"
	"github.com/smallbiznis/roomledger/internal/clock"
	"github.com/smallbiznis/roomledger/internal/landlord/domain"
	obsmetrics "github.com/smallbiznis/roomledger/internal/observability/metrics"
	"github.com/smallbiznis/roomledger/pkg/db"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Tokens  *token.Manager
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	tokens  *token.Manager
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("landlord.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		tokens:  p.Tokens,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateLandlordRequest) (domain.Landlord, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return domain.Landlord{}, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.Landlord{}, err
	}
	mobile, err := normalizeMobile(req.MobileNumber)
	if err != nil {
		return domain.Landlord{}, err
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return domain.Landlord{}, domain.ErrInvalidPassword
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.Landlord{}, err
	}
	if existing != nil {
		return domain.Landlord{}, domain.ErrEmailExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.Landlord{}, err
	}

	now := s.clock.Now()
	landlord := domain.Landlord{
		ID:             s.genID.Generate(),
		Username:       username,
		Email:          email,
		MobileNumber:   mobile,
		PasswordHash:   hash,
		IsSubscription: boolOr(req.IsSubscription, false),
		IsActive:       boolOr(req.IsActive, true),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &landlord); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Landlord{}, domain.ErrEmailExists
		}
		return domain.Landlord{}, err
	}

	s.log.Info("landlord created", zap.String("landlord_id", landlord.ID.String()))
	return landlord, nil
}

func (s *Service) List(ctx context.Context, page pagination.Pagination) ([]domain.Landlord, error) {
	landlords, err := s.repo.List(ctx, s.db, page)
	if err != nil {
		return nil, err
	}
	if landlords == nil {
		landlords = []domain.Landlord{}
	}
	return landlords, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Landlord, error) {
	landlord, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Landlord{}, err
	}
	if landlord == nil {
		return domain.Landlord{}, domain.ErrNotFound
	}
	return *landlord, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateLandlordRequest) (domain.Landlord, error) {
	landlord, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return domain.Landlord{}, err
	}
	if landlord == nil {
		return domain.Landlord{}, domain.ErrNotFound
	}

	if req.Username != nil {
		if landlord.Username, err = normalizeUsername(*req.Username); err != nil {
			return domain.Landlord{}, err
		}
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return domain.Landlord{}, err
		}
		if email != landlord.Email {
			other, err := s.repo.FindByEmail(ctx, s.db, email)
			if err != nil {
				return domain.Landlord{}, err
			}
			if other != nil {
				return domain.Landlord{}, domain.ErrEmailExists
			}
			landlord.Email = email
		}
	}
	if req.MobileNumber != nil {
		if landlord.MobileNumber, err = normalizeMobile(*req.MobileNumber); err != nil {
			return domain.Landlord{}, err
		}
	}
	if req.Password != nil {
		if utf8.RuneCountInString(*req.Password) < minPasswordLength {
			return domain.Landlord{}, domain.ErrInvalidPassword
		}
		if landlord.PasswordHash, err = password.Hash(*req.Password); err != nil {
			return domain.Landlord{}, err
		}
	}
	if req.IsSubscription != nil {
		landlord.IsSubscription = *req.IsSubscription
	}
	if req.IsActive != nil {
		landlord.IsActive = *req.IsActive
	}
	landlord.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, landlord); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Landlord{}, domain.ErrEmailExists
		}
		return domain.Landlord{}, err
	}
	return *landlord, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		landlord, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if landlord == nil {
			return domain.ErrNotFound
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("landlord deleted", zap.String("landlord_id", id.String()))
	return nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}
	if identifier == "" || req.Password == "" {
		s.metrics.RecordLogin(ctx, "failure")
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	candidates, err := s.repo.ListByLogin(ctx, s.db, identifier)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	var landlord *domain.Landlord
	for i := range candidates {
		if candidates[i].IsActive && password.Verify(req.Password, candidates[i].PasswordHash) {
			landlord = &candidates[i]
			break
		}
	}
	if landlord == nil {
		s.metrics.RecordLogin(ctx, "failure")
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.tokens.Issue(landlord.ID, landlord.Username)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	s.metrics.RecordLogin(ctx, "success")
	return domain.LoginResponse{
		Landlord:    *landlord,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

func normalizeUsername(value string) (string, error) {
	username := strings.TrimSpace(value)
	if username == "" || utf8.RuneCountInString(username) > 255 {
		return "", domain.ErrInvalidUsername
	}
	return username, nil
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

func boolOr(value *bool, def bool) bool {
	if value == nil {
		return def
	}
	return *value
}

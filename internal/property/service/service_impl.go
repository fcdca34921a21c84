package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/clock"
	landlorddomain "github.com/smallbiznis/roomledger/internal/landlord/domain"
	"github.com/smallbiznis/roomledger/internal/property/domain"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	LandlordRepo landlorddomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	landlordRepo landlorddomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("property.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		landlordRepo: p.LandlordRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePropertyRequest) (domain.Property, error) {
	name := strings.TrimSpace(req.PropertyName)
	if name == "" {
		return domain.Property{}, domain.ErrInvalidPropertyName
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.Property{}, domain.ErrInvalidAddress
	}

	landlord, err := s.landlordRepo.FindByID(ctx, s.db, req.LandlordID)
	if err != nil {
		return domain.Property{}, err
	}
	if landlord == nil {
		return domain.Property{}, landlorddomain.ErrNotFound
	}

	now := s.clock.Now()
	property := domain.Property{
		ID:           s.genID.Generate(),
		LandlordID:   landlord.ID,
		PropertyName: name,
		Address:      address,
		Landmark:     strings.TrimSpace(req.Landmark),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		IsActive:     req.IsActive == nil || *req.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &property); err != nil {
		return domain.Property{}, err
	}
	return property, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPropertyRequest) ([]domain.Property, error) {
	return s.list(ctx, domain.ListPropertyFilter{
		City:     strings.TrimSpace(req.City),
		IsActive: req.IsActive,
	}, req.Pagination)
}

func (s *Service) ListByLandlord(ctx context.Context, landlordID snowflake.ID, page pagination.Pagination) ([]domain.Property, error) {
	landlord, err := s.landlordRepo.FindByID(ctx, s.db, landlordID)
	if err != nil {
		return nil, err
	}
	if landlord == nil {
		return nil, landlorddomain.ErrNotFound
	}
	return s.list(ctx, domain.ListPropertyFilter{LandlordID: &landlordID}, page)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Property, error) {
	property, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Property{}, err
	}
	if property == nil {
		return domain.Property{}, domain.ErrNotFound
	}
	return *property, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePropertyRequest) (domain.Property, error) {
	property, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return domain.Property{}, err
	}
	if property == nil {
		return domain.Property{}, domain.ErrNotFound
	}

	if req.PropertyName != nil {
		name := strings.TrimSpace(*req.PropertyName)
		if name == "" {
			return domain.Property{}, domain.ErrInvalidPropertyName
		}
		property.PropertyName = name
	}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if address == "" {
			return domain.Property{}, domain.ErrInvalidAddress
		}
		property.Address = address
	}
	if req.Landmark != nil {
		property.Landmark = strings.TrimSpace(*req.Landmark)
	}
	if req.City != nil {
		property.City = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		property.State = strings.TrimSpace(*req.State)
	}
	if req.IsActive != nil {
		property.IsActive = *req.IsActive
	}
	property.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, property); err != nil {
		return domain.Property{}, err
	}
	return *property, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	property, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if property == nil {
		return domain.ErrNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("property deleted",
		zap.String("property_id", id.String()),
		zap.String("landlord_id", property.LandlordID.String()),
	)
	return nil
}

func (s *Service) list(ctx context.Context, filter domain.ListPropertyFilter, page pagination.Pagination) ([]domain.Property, error) {
	properties, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return nil, err
	}
	if properties == nil {
		properties = []domain.Property{}
	}
	return properties, nil
}

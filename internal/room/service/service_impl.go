package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/clock"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	"github.com/smallbiznis/roomledger/internal/room/domain"
	tenantdomain "github.com/smallbiznis/roomledger/internal/tenant/domain"
	"github.com/smallbiznis/roomledger/pkg/db"
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
	PropertyRepo propertydomain.Repository
	TenantRepo   tenantdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	propertyRepo propertydomain.Repository
	tenantRepo   tenantdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("room.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		propertyRepo: p.PropertyRepo,
		tenantRepo:   p.TenantRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRoomRequest) (domain.Room, error) {
	number := strings.TrimSpace(req.RoomNumber)
	if number == "" || len(number) > 50 {
		return domain.Room{}, domain.ErrInvalidRoomNumber
	}
	if req.Rate != nil && *req.Rate < 0 {
		return domain.Room{}, domain.ErrInvalidRate
	}

	now := s.clock.Now()
	room := domain.Room{
		ID:         s.genID.Generate(),
		PropertyID: req.PropertyID,
		RoomNumber: number,
		IsOccupied: false,
		Rate:       req.Rate,
		CreatedAt:  now,
		UpdatedAt:  now,
		Tenants:    []tenantdomain.Tenant{},
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := s.propertyRepo.FindByID(ctx, tx, req.PropertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return propertydomain.ErrNotFound
		}

		existing, err := s.repo.FindByNumber(ctx, tx, req.PropertyID, number)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrRoomNumberExists
		}

		if err := s.repo.Insert(ctx, tx, &room); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrRoomNumberExists
			}
			return err
		}
		return s.propertyRepo.AdjustTotalRooms(ctx, tx, req.PropertyID, 1)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRoomRequest) ([]domain.Room, error) {
	rooms, err := s.repo.List(ctx, s.db, domain.ListRoomFilter{IsOccupied: req.IsOccupied}, req.Pagination)
	if err != nil {
		return nil, err
	}
	return s.withTenants(ctx, rooms)
}

func (s *Service) ListByProperty(ctx context.Context, propertyID snowflake.ID, req domain.ListRoomRequest) ([]domain.Room, error) {
	property, err := s.propertyRepo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, propertydomain.ErrNotFound
	}

	rooms, err := s.repo.List(ctx, s.db, domain.ListRoomFilter{
		PropertyID: &propertyID,
		IsOccupied: req.IsOccupied,
	}, req.Pagination)
	if err != nil {
		return nil, err
	}
	return s.withTenants(ctx, rooms)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Room, error) {
	room, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Room{}, err
	}
	if room == nil {
		return domain.Room{}, domain.ErrNotFound
	}
	rooms, err := s.withTenants(ctx, []domain.Room{*room})
	if err != nil {
		return domain.Room{}, err
	}
	return rooms[0], nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRoomRequest) (domain.Room, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.repo.FindByID(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if room == nil {
			return domain.ErrNotFound
		}

		if req.RoomNumber != nil {
			number := strings.TrimSpace(*req.RoomNumber)
			if number == "" || len(number) > 50 {
				return domain.ErrInvalidRoomNumber
			}
			if number != room.RoomNumber {
				other, err := s.repo.FindByNumber(ctx, tx, room.PropertyID, number)
				if err != nil {
					return err
				}
				if other != nil {
					return domain.ErrRoomNumberExists
				}
				room.RoomNumber = number
			}
		}
		if req.Rate != nil {
			if *req.Rate < 0 {
				return domain.ErrInvalidRate
			}
			room.Rate = req.Rate
		}
		room.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, room); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrRoomNumberExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Room{}, err
	}
	return s.GetByID(ctx, req.ID)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	var room *domain.Room
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if room == nil {
			return domain.ErrNotFound
		}
		removed, err := s.repo.Delete(ctx, tx, id)
		if err != nil {
			return err
		}
		// A concurrent delete may have won since the lookup.
		if !removed {
			return domain.ErrNotFound
		}
		return s.propertyRepo.AdjustTotalRooms(ctx, tx, room.PropertyID, -1)
	})
	if err != nil {
		return err
	}

	s.log.Info("room deleted",
		zap.String("room_id", id.String()),
		zap.String("property_id", room.PropertyID.String()),
	)
	return nil
}

func (s *Service) withTenants(ctx context.Context, rooms []domain.Room) ([]domain.Room, error) {
	if len(rooms) == 0 {
		return []domain.Room{}, nil
	}

	ids := make([]snowflake.ID, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	tenants, err := s.tenantRepo.ListByRoomIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	byRoom := make(map[snowflake.ID][]tenantdomain.Tenant, len(rooms))
	for _, tenant := range tenants {
		byRoom[tenant.AssignedRoomID] = append(byRoom[tenant.AssignedRoomID], tenant)
	}
	for i := range rooms {
		rooms[i].Tenants = byRoom[rooms[i].ID]
		if rooms[i].Tenants == nil {
			rooms[i].Tenants = []tenantdomain.Tenant{}
		}
	}
	return rooms, nil
}

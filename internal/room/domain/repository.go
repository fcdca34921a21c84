package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListRoomFilter struct {
	PropertyID *snowflake.ID
	IsOccupied *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, room *Room) error
	Update(ctx context.Context, db *gorm.DB, room *Room) error
	SetOccupied(ctx context.Context, db *gorm.DB, id snowflake.ID, occupied bool, at time.Time) error
	// Delete removes the room with its readings, payments and tenants and
	// reports whether the room row existed.
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Room, error)
	FindByNumber(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, roomNumber string) (*Room, error)
	List(ctx context.Context, db *gorm.DB, filter ListRoomFilter, page pagination.Pagination) ([]Room, error)
	ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]Room, error)
}

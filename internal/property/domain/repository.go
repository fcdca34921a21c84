package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListPropertyFilter struct {
	LandlordID *snowflake.ID
	City       string
	IsActive   *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, property *Property) error
	Update(ctx context.Context, db *gorm.DB, property *Property) error
	// AdjustTotalRooms adds delta to total_rooms without going below zero.
	AdjustTotalRooms(ctx context.Context, db *gorm.DB, id snowflake.ID, delta int) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Property, error)
	List(ctx context.Context, db *gorm.DB, filter ListPropertyFilter, page pagination.Pagination) ([]Property, error)
}

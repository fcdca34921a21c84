package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListReadingFilter struct {
	RoomID     *snowflake.ID
	PropertyID *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reading *Reading) error
	Update(ctx context.Context, db *gorm.DB, reading *Reading) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reading, error)
	// LatestByRoom returns the most recent reading of a room, or nil.
	LatestByRoom(ctx context.Context, db *gorm.DB, roomID snowflake.ID) (*Reading, error)
	List(ctx context.Context, db *gorm.DB, filter ListReadingFilter, page pagination.Pagination) ([]Reading, error)
	// ListByPeriod returns readings of a property dated in [from, to).
	ListByPeriod(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, from, to time.Time) ([]Reading, error)
}

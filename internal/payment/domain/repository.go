package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListPaymentFilter struct {
	TenantID   *snowflake.ID
	RoomID     *snowflake.ID
	PropertyID *snowflake.ID
	Month      *int
	Year       *int
	IsPaid     *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	Update(ctx context.Context, db *gorm.DB, payment *Payment) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	FindByPeriod(ctx context.Context, db *gorm.DB, tenantID, roomID snowflake.ID, month, year int) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, filter ListPaymentFilter, page pagination.Pagination) ([]Payment, error)
	// ListByPeriod returns every payment of a property for the period. A zero
	// year matches the month in any year.
	ListByPeriod(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, month, year int) ([]Payment, error)
}

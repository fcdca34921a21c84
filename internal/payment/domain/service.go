package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreatePaymentRequest struct {
	TenantID    snowflake.ID
	RoomID      snowflake.ID
	Month       int
	Year        int
	Amount      float64
	PaymentDue  *float64
	IsPaid      *bool
	PaymentDate *time.Time
}

// GenerateRequest describes a payment raised by another workflow, such as
// an electricity reading, inside that workflow's transaction.
type GenerateRequest struct {
	TenantID    snowflake.ID
	RoomID      snowflake.ID
	PropertyID  snowflake.ID
	Month       int
	Year        int
	Amount      float64
	IsPaid      bool
	PaymentDate time.Time
	Source      string
}

type UpdatePaymentRequest struct {
	ID          snowflake.ID
	Amount      *float64
	PaymentDue  *float64
	IsPaid      *bool
	PaymentDate *time.Time
}

type ListPaymentRequest struct {
	pagination.Pagination
	IsPaid *bool
	Month  *int
	Year   *int
}

type Service interface {
	Create(context.Context, CreatePaymentRequest) (Payment, error)
	Generate(ctx context.Context, tx *gorm.DB, req GenerateRequest) (Payment, error)
	List(context.Context, ListPaymentRequest) ([]Payment, error)
	ListByTenant(ctx context.Context, tenantID snowflake.ID, req ListPaymentRequest) ([]Payment, error)
	ListByRoom(ctx context.Context, roomID snowflake.ID, req ListPaymentRequest) ([]Payment, error)
	GetByID(context.Context, snowflake.ID) (Payment, error)
	Update(context.Context, UpdatePaymentRequest) (Payment, error)
	Delete(context.Context, snowflake.ID) error
	MonthlyReport(ctx context.Context, propertyID snowflake.ID, month, year int) (MonthlyReport, error)
}

var (
	ErrInvalidMonth    = errors.New("invalid_month")
	ErrInvalidYear     = errors.New("invalid_year")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrTenantNotInRoom = errors.New("tenant_not_in_room")
	ErrDuplicatePeriod = errors.New("duplicate_payment_period")
	ErrNotFound        = errors.New("payment_not_found")
)

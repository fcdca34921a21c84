package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
)

type CreateReadingRequest struct {
	PropertyID     snowflake.ID
	RoomNumber     string
	LastReading    *float64
	CurrentReading float64
	Rate           *float64
	ReadingDate    *time.Time
}

type UpdateReadingRequest struct {
	ID             snowflake.ID
	ReadingDate    *time.Time
	LastReading    *float64
	CurrentReading *float64
	Rate           *float64
}

type ListReadingRequest struct {
	pagination.Pagination
}

type Service interface {
	Create(context.Context, CreateReadingRequest) (Reading, error)
	// CreateBulk records every entry in one transaction. Any failure rolls
	// back the whole batch.
	CreateBulk(context.Context, []CreateReadingRequest) ([]Reading, error)
	List(context.Context, ListReadingRequest) ([]Reading, error)
	ListByRoom(ctx context.Context, roomID snowflake.ID, req ListReadingRequest) ([]Reading, error)
	GetByID(context.Context, snowflake.ID) (Reading, error)
	Update(context.Context, UpdateReadingRequest) (Reading, error)
	Delete(context.Context, snowflake.ID) error
	MonthlyReport(ctx context.Context, propertyID snowflake.ID, month, year int) (MonthlyReport, error)
}

var (
	ErrInvalidRoomNumber = errors.New("invalid_room_number")
	ErrInvalidReading    = errors.New("invalid_reading")
	ErrReadingDecreased  = errors.New("current_reading_below_last_reading")
	ErrInvalidRate       = errors.New("invalid_rate")
	ErrInvalidMonth      = errors.New("invalid_month")
	ErrInvalidYear       = errors.New("invalid_year")
	ErrEmptyBatch        = errors.New("empty_batch")
	ErrNotFound          = errors.New("electricity_reading_not_found")
)

package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	MonthlyDetails(ctx context.Context, propertyID snowflake.ID, month, year int) (MonthlyDetails, error)
	// Statement renders MonthlyDetails as a PDF document.
	Statement(ctx context.Context, propertyID snowflake.ID, month, year int) ([]byte, error)
}

type Renderer interface {
	RenderStatement(ctx context.Context, details MonthlyDetails) ([]byte, error)
}

var (
	ErrNoRooms      = errors.New("no_rooms_for_property")
	ErrInvalidMonth = errors.New("invalid_month")
)

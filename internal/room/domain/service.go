package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
)

type CreateRoomRequest struct {
	PropertyID snowflake.ID
	RoomNumber string
	Rate       *float64
}

type UpdateRoomRequest struct {
	ID         snowflake.ID
	RoomNumber *string
	Rate       *float64
}

type ListRoomRequest struct {
	pagination.Pagination
	IsOccupied *bool
}

type Service interface {
	Create(context.Context, CreateRoomRequest) (Room, error)
	List(context.Context, ListRoomRequest) ([]Room, error)
	ListByProperty(ctx context.Context, propertyID snowflake.ID, req ListRoomRequest) ([]Room, error)
	GetByID(context.Context, snowflake.ID) (Room, error)
	Update(context.Context, UpdateRoomRequest) (Room, error)
	Delete(context.Context, snowflake.ID) error
}

var (
	ErrInvalidRoomNumber = errors.New("invalid_room_number")
	ErrInvalidRate       = errors.New("invalid_rate")
	ErrRoomNumberExists  = errors.New("room_number_exists")
	ErrNotFound          = errors.New("room_not_found")
)

package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
)

type CreatePropertyRequest struct {
	LandlordID   snowflake.ID
	PropertyName string
	Address      string
	Landmark     string
	City         string
	State        string
	IsActive     *bool
}

type UpdatePropertyRequest struct {
	ID           snowflake.ID
	PropertyName *string
	Address      *string
	Landmark     *string
	City         *string
	State        *string
	IsActive     *bool
}

type ListPropertyRequest struct {
	pagination.Pagination
	City     string
	IsActive *bool
}

type Service interface {
	Create(context.Context, CreatePropertyRequest) (Property, error)
	List(context.Context, ListPropertyRequest) ([]Property, error)
	ListByLandlord(ctx context.Context, landlordID snowflake.ID, page pagination.Pagination) ([]Property, error)
	GetByID(context.Context, snowflake.ID) (Property, error)
	Update(context.Context, UpdatePropertyRequest) (Property, error)
	Delete(context.Context, snowflake.ID) error
}

var (
	ErrInvalidPropertyName = errors.New("invalid_property_name")
	ErrInvalidAddress      = errors.New("invalid_address")
	ErrNotFound            = errors.New("property_not_found")
)

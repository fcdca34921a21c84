package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
)

type CreateLandlordRequest struct {
	Username       string
	Email          string
	MobileNumber   string
	Password       string
	IsSubscription *bool
	IsActive       *bool
}

type UpdateLandlordRequest struct {
	ID             snowflake.ID
	Username       *string
	Email          *string
	MobileNumber   *string
	Password       *string
	IsSubscription *bool
	IsActive       *bool
}

type LoginRequest struct {
	// Identifier is either the landlord's email or username.
	Identifier string
	Password   string
}

type LoginResponse struct {
	Landlord    Landlord  `json:"landlord"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Service interface {
	Create(context.Context, CreateLandlordRequest) (Landlord, error)
	List(context.Context, pagination.Pagination) ([]Landlord, error)
	GetByID(context.Context, snowflake.ID) (Landlord, error)
	Update(context.Context, UpdateLandlordRequest) (Landlord, error)
	Delete(context.Context, snowflake.ID) error
	Login(context.Context, LoginRequest) (LoginResponse, error)
}

var (
	ErrInvalidUsername     = errors.New("invalid_username")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidMobileNumber = errors.New("invalid_mobile_number")
	ErrInvalidPassword     = errors.New("invalid_password")
	ErrEmailExists         = errors.New("email_exists")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrNotFound            = errors.New("landlord_not_found")
)

package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
)

// DocumentStore persists uploaded tenant documents and returns the public
// path recorded on the tenant.
type DocumentStore interface {
	Save(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, paths ...string) error
}

type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type Documents struct {
	AadharPhoto *Upload
	OtherImages []Upload
}

type CreateTenantRequest struct {
	PropertyID     snowflake.ID
	AssignedRoomID snowflake.ID
	Name           string
	Email          string
	MobileNumber   string
	TotalPerson    *int
	AadharPhoto    string
	OtherImages    []string
	MoveInDate     time.Time
	IsActive       *bool
}

type UpdateTenantRequest struct {
	ID           snowflake.ID
	Name         *string
	Email        *string
	MobileNumber *string
	TotalPerson  *int
	AadharPhoto  *string
	OtherImages  *[]string
	MoveInDate   *time.Time
	IsActive     *bool
}

type ListTenantRequest struct {
	pagination.Pagination
	IsActive *bool
}

type Service interface {
	Create(context.Context, CreateTenantRequest) (Tenant, error)
	// CreateWithDocuments stores the uploads first and removes them again if
	// the tenant row cannot be written.
	CreateWithDocuments(context.Context, CreateTenantRequest, Documents) (Tenant, error)
	List(context.Context, ListTenantRequest) ([]Tenant, error)
	ListByProperty(ctx context.Context, propertyID snowflake.ID, req ListTenantRequest) ([]Tenant, error)
	GetByID(context.Context, snowflake.ID) (Tenant, error)
	GetByRoom(ctx context.Context, roomID snowflake.ID) (Tenant, error)
	Update(context.Context, UpdateTenantRequest) (Tenant, error)
	Delete(context.Context, snowflake.ID) error
}

var (
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidEmail         = errors.New("invalid_email")
	ErrInvalidMobileNumber  = errors.New("invalid_mobile_number")
	ErrInvalidTotalPerson   = errors.New("invalid_total_person")
	ErrInvalidMoveInDate    = errors.New("invalid_move_in_date")
	ErrInvalidDocument      = errors.New("invalid_document")
	ErrDocumentTooLarge     = errors.New("document_too_large")
	ErrTooManyDocuments     = errors.New("too_many_documents")
	ErrRoomOccupied         = errors.New("room_occupied")
	ErrRoomPropertyMismatch = errors.New("room_property_mismatch")
	ErrNoTenantForRoom      = errors.New("no_tenant_for_room")
	ErrNotFound             = errors.New("tenant_not_found")
)

package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListTenantFilter struct {
	PropertyID *snowflake.ID
	RoomID     *snowflake.ID
	IsActive   *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	Update(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	// Delete removes the tenant and its payments.
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	// FindActiveByRoom returns the active tenant of roomID other than
	// excludeID, or nil. Pass 0 to exclude nobody.
	FindActiveByRoom(ctx context.Context, db *gorm.DB, roomID, excludeID snowflake.ID) (*Tenant, error)
	ListByRoomIDs(ctx context.Context, db *gorm.DB, roomIDs []snowflake.ID) ([]Tenant, error)
	List(ctx context.Context, db *gorm.DB, filter ListTenantFilter, page pagination.Pagination) ([]Tenant, error)
	// ListReferencing returns tenants other than excludeID whose documents
	// may include one of paths. Callers must match paths exactly.
	ListReferencing(ctx context.Context, db *gorm.DB, paths []string, excludeID snowflake.ID) ([]Tenant, error)
}

package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, landlord *Landlord) error
	Update(ctx context.Context, db *gorm.DB, landlord *Landlord) error
	// Delete removes the landlord together with every property, room,
	// tenant, payment and reading beneath it.
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Landlord, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Landlord, error)
	// ListByLogin returns landlords whose email or username equals
	// identifier, email matches first.
	ListByLogin(ctx context.Context, db *gorm.DB, identifier string) ([]Landlord, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]Landlord, error)
}

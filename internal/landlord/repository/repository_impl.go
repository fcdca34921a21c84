package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/landlord/domain"
	"github.com/smallbiznis/roomledger/pkg/db/option"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

const landlordColumns = `id, username, email, mobile_number, password_hash, is_subscription, is_active, created_at, updated_at`

// Children first so the statements also succeed where foreign keys are
// enforced without ON DELETE CASCADE.
var cascadeStatements = []string{
	`DELETE FROM electricity_readings WHERE property_id IN (SELECT id FROM properties WHERE landlord_id = ?)`,
	`DELETE FROM payments WHERE property_id IN (SELECT id FROM properties WHERE landlord_id = ?)`,
	`DELETE FROM tenants WHERE property_id IN (SELECT id FROM properties WHERE landlord_id = ?)`,
	`DELETE FROM rooms WHERE property_id IN (SELECT id FROM properties WHERE landlord_id = ?)`,
	`DELETE FROM properties WHERE landlord_id = ?`,
	`DELETE FROM landlords WHERE id = ?`,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, landlord *domain.Landlord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO landlords (`+landlordColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		landlord.ID,
		landlord.Username,
		landlord.Email,
		landlord.MobileNumber,
		landlord.PasswordHash,
		landlord.IsSubscription,
		landlord.IsActive,
		landlord.CreatedAt,
		landlord.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, landlord *domain.Landlord) error {
	return db.WithContext(ctx).Exec(
		`UPDATE landlords
		 SET username = ?, email = ?, mobile_number = ?, password_hash = ?,
		     is_subscription = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		landlord.Username,
		landlord.Email,
		landlord.MobileNumber,
		landlord.PasswordHash,
		landlord.IsSubscription,
		landlord.IsActive,
		landlord.UpdatedAt,
		landlord.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	for _, stmt := range cascadeStatements {
		if err := db.WithContext(ctx).Exec(stmt, id).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Landlord, error) {
	return r.findOne(ctx, db, `SELECT `+landlordColumns+` FROM landlords WHERE id = ?`, id)
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Landlord, error) {
	return r.findOne(ctx, db, `SELECT `+landlordColumns+` FROM landlords WHERE email = ?`, email)
}

// Usernames are not unique, so a username can match several landlords.
func (r *repo) ListByLogin(ctx context.Context, db *gorm.DB, identifier string) ([]domain.Landlord, error) {
	var landlords []domain.Landlord
	err := db.WithContext(ctx).Raw(
		`SELECT `+landlordColumns+` FROM landlords
		 WHERE email = ? OR username = ?
		 ORDER BY CASE WHEN email = ? THEN 0 ELSE 1 END, created_at ASC, id ASC`,
		identifier, identifier, identifier,
	).Scan(&landlords).Error
	if err != nil {
		return nil, err
	}
	return landlords, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]domain.Landlord, error) {
	var landlords []domain.Landlord
	stmt := option.Apply(db.WithContext(ctx).Model(&domain.Landlord{}), option.ApplyPagination(page))
	if err := stmt.Order("created_at asc, id asc").Find(&landlords).Error; err != nil {
		return nil, err
	}
	return landlords, nil
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*domain.Landlord, error) {
	var landlord domain.Landlord
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&landlord).Error; err != nil {
		return nil, err
	}
	if landlord.ID == 0 {
		return nil, nil
	}
	return &landlord, nil
}

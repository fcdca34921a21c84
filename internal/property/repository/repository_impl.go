package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/property/domain"
	"github.com/smallbiznis/roomledger/pkg/db/option"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

const propertyColumns = `id, landlord_id, property_name, address, landmark, city, state, total_rooms, is_active, created_at, updated_at`

var cascadeStatements = []string{
	`DELETE FROM electricity_readings WHERE property_id = ?`,
	`DELETE FROM payments WHERE property_id = ?`,
	`DELETE FROM tenants WHERE property_id = ?`,
	`DELETE FROM rooms WHERE property_id = ?`,
	`DELETE FROM properties WHERE id = ?`,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO properties (`+propertyColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		property.ID,
		property.LandlordID,
		property.PropertyName,
		property.Address,
		property.Landmark,
		property.City,
		property.State,
		property.TotalRooms,
		property.IsActive,
		property.CreatedAt,
		property.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Exec(
		`UPDATE properties
		 SET property_name = ?, address = ?, landmark = ?, city = ?, state = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		property.PropertyName,
		property.Address,
		property.Landmark,
		property.City,
		property.State,
		property.IsActive,
		property.UpdatedAt,
		property.ID,
	).Error
}

func (r *repo) AdjustTotalRooms(ctx context.Context, db *gorm.DB, id snowflake.ID, delta int) error {
	return db.WithContext(ctx).Exec(
		`UPDATE properties
		 SET total_rooms = CASE WHEN total_rooms + ? < 0 THEN 0 ELSE total_rooms + ? END
		 WHERE id = ?`,
		delta,
		delta,
		id,
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

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).Raw(
		`SELECT `+propertyColumns+` FROM properties WHERE id = ?`,
		id,
	).Scan(&property).Error
	if err != nil {
		return nil, err
	}
	if property.ID == 0 {
		return nil, nil
	}
	return &property, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPropertyFilter, page pagination.Pagination) ([]domain.Property, error) {
	var properties []domain.Property
	stmt := db.WithContext(ctx).Model(&domain.Property{})
	if filter.LandlordID != nil {
		stmt = stmt.Where("landlord_id = ?", *filter.LandlordID)
	}
	if filter.City != "" {
		stmt = stmt.Where("city = ?", filter.City)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	stmt = option.Apply(stmt, option.ApplyPagination(page))
	if err := stmt.Order("created_at asc, id asc").Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

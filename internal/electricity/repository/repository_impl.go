package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/electricity/domain"
	"github.com/smallbiznis/roomledger/pkg/db/option"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

const readingColumns = `id, room_id, property_id, room_number, reading_date, last_reading, current_reading, consumption, rate, total_amount, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reading *domain.Reading) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO electricity_readings (`+readingColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reading.ID,
		reading.RoomID,
		reading.PropertyID,
		reading.RoomNumber,
		reading.ReadingDate,
		reading.LastReading,
		reading.CurrentReading,
		reading.Consumption,
		reading.Rate,
		reading.TotalAmount,
		reading.CreatedAt,
		reading.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, reading *domain.Reading) error {
	return db.WithContext(ctx).Exec(
		`UPDATE electricity_readings
		 SET reading_date = ?, last_reading = ?, current_reading = ?, consumption = ?, rate = ?, total_amount = ?, updated_at = ?
		 WHERE id = ?`,
		reading.ReadingDate,
		reading.LastReading,
		reading.CurrentReading,
		reading.Consumption,
		reading.Rate,
		reading.TotalAmount,
		reading.UpdatedAt,
		reading.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM electricity_readings WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Reading, error) {
	return r.findOne(ctx, db, `SELECT `+readingColumns+` FROM electricity_readings WHERE id = ?`, id)
}

func (r *repo) LatestByRoom(ctx context.Context, db *gorm.DB, roomID snowflake.ID) (*domain.Reading, error) {
	return r.findOne(ctx, db,
		`SELECT `+readingColumns+` FROM electricity_readings
		 WHERE room_id = ?
		 ORDER BY reading_date DESC, created_at DESC, id DESC
		 LIMIT 1`,
		roomID,
	)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListReadingFilter, page pagination.Pagination) ([]domain.Reading, error) {
	var readings []domain.Reading
	stmt := db.WithContext(ctx).Model(&domain.Reading{})
	if filter.RoomID != nil {
		stmt = stmt.Where("room_id = ?", *filter.RoomID)
	}
	if filter.PropertyID != nil {
		stmt = stmt.Where("property_id = ?", *filter.PropertyID)
	}
	stmt = option.Apply(stmt, option.ApplyPagination(page))
	if err := stmt.Order("reading_date desc, id desc").Find(&readings).Error; err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *repo) ListByPeriod(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, from, to time.Time) ([]domain.Reading, error) {
	var readings []domain.Reading
	err := db.WithContext(ctx).Raw(
		`SELECT `+readingColumns+` FROM electricity_readings
		 WHERE property_id = ? AND reading_date >= ? AND reading_date < ?
		 ORDER BY room_number ASC, reading_date ASC, id ASC`,
		propertyID,
		from,
		to,
	).Scan(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*domain.Reading, error) {
	var reading domain.Reading
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&reading).Error; err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

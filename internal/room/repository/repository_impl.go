package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/room/domain"
	"github.com/smallbiznis/roomledger/pkg/db/option"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

const roomColumns = `id, property_id, room_number, is_occupied, rate, created_at, updated_at`

var cascadeStatements = []string{
	`DELETE FROM electricity_readings WHERE room_id = ?`,
	`DELETE FROM payments WHERE room_id = ?`,
	`DELETE FROM tenants WHERE assigned_room_id = ?`,
	`DELETE FROM rooms WHERE id = ?`,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, room *domain.Room) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rooms (`+roomColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		room.ID,
		room.PropertyID,
		room.RoomNumber,
		room.IsOccupied,
		room.Rate,
		room.CreatedAt,
		room.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, room *domain.Room) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rooms SET room_number = ?, rate = ?, updated_at = ? WHERE id = ?`,
		room.RoomNumber,
		room.Rate,
		room.UpdatedAt,
		room.ID,
	).Error
}

func (r *repo) SetOccupied(ctx context.Context, db *gorm.DB, id snowflake.ID, occupied bool, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rooms SET is_occupied = ?, updated_at = ? WHERE id = ?`,
		occupied,
		at,
		id,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var removed int64
	for _, stmt := range cascadeStatements {
		res := db.WithContext(ctx).Exec(stmt, id)
		if res.Error != nil {
			return false, res.Error
		}
		removed = res.RowsAffected
	}
	return removed > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Room, error) {
	return r.findOne(ctx, db, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, roomNumber string) (*domain.Room, error) {
	return r.findOne(ctx, db,
		`SELECT `+roomColumns+` FROM rooms WHERE property_id = ? AND room_number = ?`,
		propertyID,
		roomNumber,
	)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRoomFilter, page pagination.Pagination) ([]domain.Room, error) {
	var rooms []domain.Room
	stmt := db.WithContext(ctx).Model(&domain.Room{})
	if filter.PropertyID != nil {
		stmt = stmt.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.IsOccupied != nil {
		stmt = stmt.Where("is_occupied = ?", *filter.IsOccupied)
	}
	stmt = option.Apply(stmt, option.ApplyPagination(page))
	if err := stmt.Order("created_at asc, id asc").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *repo) ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]domain.Room, error) {
	var rooms []domain.Room
	err := db.WithContext(ctx).Raw(
		`SELECT `+roomColumns+` FROM rooms WHERE property_id = ? ORDER BY room_number ASC, id ASC`,
		propertyID,
	).Scan(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*domain.Room, error) {
	var room domain.Room
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&room).Error; err != nil {
		return nil, err
	}
	if room.ID == 0 {
		return nil, nil
	}
	return &room, nil
}

package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/payment/domain"
	"github.com/smallbiznis/roomledger/pkg/db/option"
	"github.com/smallbiznis/roomledger/pkg/db/pagination"
	"gorm.io/gorm"
)

const paymentColumns = `id, tenant_id, room_id, property_id, month, year, payment, payment_due, is_paid, payment_date, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (`+paymentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.TenantID,
		payment.RoomID,
		payment.PropertyID,
		payment.Month,
		payment.Year,
		payment.Amount,
		payment.PaymentDue,
		payment.IsPaid,
		payment.PaymentDate,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments
		 SET payment = ?, payment_due = ?, is_paid = ?, payment_date = ?, updated_at = ?
		 WHERE id = ?`,
		payment.Amount,
		payment.PaymentDue,
		payment.IsPaid,
		payment.PaymentDate,
		payment.UpdatedAt,
		payment.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM payments WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	return r.findOne(ctx, db, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
}

func (r *repo) FindByPeriod(ctx context.Context, db *gorm.DB, tenantID, roomID snowflake.ID, month, year int) (*domain.Payment, error) {
	return r.findOne(ctx, db,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE tenant_id = ? AND room_id = ? AND month = ? AND year = ?`,
		tenantID,
		roomID,
		month,
		year,
	)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPaymentFilter, page pagination.Pagination) ([]domain.Payment, error) {
	var payments []domain.Payment
	stmt := db.WithContext(ctx).Model(&domain.Payment{})
	if filter.TenantID != nil {
		stmt = stmt.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.RoomID != nil {
		stmt = stmt.Where("room_id = ?", *filter.RoomID)
	}
	if filter.PropertyID != nil {
		stmt = stmt.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.Month != nil {
		stmt = stmt.Where("month = ?", *filter.Month)
	}
	if filter.Year != nil {
		stmt = stmt.Where("year = ?", *filter.Year)
	}
	if filter.IsPaid != nil {
		stmt = stmt.Where("is_paid = ?", *filter.IsPaid)
	}
	stmt = option.Apply(stmt, option.ApplyPagination(page))
	if err := stmt.Order("year desc, month desc, id asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) ListByPeriod(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, month, year int) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE property_id = ? AND month = ?`
	args := []interface{}{propertyID, month}
	if year != 0 {
		query += ` AND year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY room_id ASC, id ASC`

	var payments []domain.Payment
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*domain.Payment, error) {
	var payment domain.Payment
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&payment).Error; err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

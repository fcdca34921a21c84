package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Payment struct {
	ID          snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	TenantID    snowflake.ID `gorm:"not null;uniqueIndex:ux_payments_period,priority:1" json:"tenant_id"`
	RoomID      snowflake.ID `gorm:"not null;uniqueIndex:ux_payments_period,priority:2" json:"room_id"`
	PropertyID  snowflake.ID `gorm:"not null;index" json:"property_id"`
	Month       int          `gorm:"not null;uniqueIndex:ux_payments_period,priority:3" json:"month"`
	Year        int          `gorm:"not null;uniqueIndex:ux_payments_period,priority:4" json:"year"`
	Amount      float64      `gorm:"column:payment;not null" json:"payment"`
	PaymentDue  *float64     `json:"payment_due"`
	IsPaid      bool         `gorm:"not null;default:false" json:"is_paid"`
	PaymentDate time.Time    `gorm:"type:date;not null" json:"payment_date"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

// MonthlyReport summarises the payments recorded for one property and period.
type MonthlyReport struct {
	PropertyID  snowflake.ID `json:"property_id"`
	Month       int          `json:"month"`
	Year        int          `json:"year,omitempty"`
	Count       int          `json:"count"`
	TotalAmount float64      `json:"total_amount"`
	TotalPaid   float64      `json:"total_paid"`
	TotalUnpaid float64      `json:"total_unpaid"`
	TotalDue    float64      `json:"total_due"`
	Payments    []Payment    `json:"payments"`
}

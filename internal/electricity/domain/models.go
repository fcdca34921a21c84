package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Reading struct {
	ID             snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	RoomID         snowflake.ID `gorm:"not null;index" json:"room_id"`
	PropertyID     snowflake.ID `gorm:"not null;index:ix_electricity_readings_property_date,priority:1" json:"property_id"`
	RoomNumber     string       `gorm:"type:varchar(50);not null" json:"room_number"`
	ReadingDate    time.Time    `gorm:"type:date;not null;index:ix_electricity_readings_property_date,priority:2" json:"reading_date"`
	LastReading    float64      `gorm:"not null;default:0" json:"last_reading"`
	CurrentReading float64      `gorm:"not null" json:"current_reading"`
	Consumption    float64      `gorm:"not null" json:"consumption"`
	Rate           float64      `gorm:"not null" json:"rate"`
	TotalAmount    float64      `gorm:"not null" json:"total_amount"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`

	// GeneratedPaymentID is set on create when a payment was raised for the
	// room's active tenant.
	GeneratedPaymentID *snowflake.ID `gorm:"-" json:"generated_payment_id,omitempty"`
}

func (Reading) TableName() string { return "electricity_readings" }

// Recalculate derives consumption and total amount from the meter values.
func (r *Reading) Recalculate() {
	r.Consumption = r.CurrentReading - r.LastReading
	r.TotalAmount = r.Consumption * r.Rate
}

type MonthlyReport struct {
	PropertyID       snowflake.ID `json:"property_id"`
	Month            int          `json:"month"`
	Year             int          `json:"year"`
	Count            int          `json:"count"`
	TotalConsumption float64      `json:"total_consumption"`
	TotalAmount      float64      `json:"total_amount"`
	Readings         []Reading    `json:"readings"`
}

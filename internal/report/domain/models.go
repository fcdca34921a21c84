package domain

import (
	"github.com/bwmarrin/snowflake"
	electricitydomain "github.com/smallbiznis/roomledger/internal/electricity/domain"
	paymentdomain "github.com/smallbiznis/roomledger/internal/payment/domain"
)

// MonthlyDetails is the per-room view of a property for one month.
type MonthlyDetails struct {
	PropertyID   snowflake.ID  `json:"property_id"`
	PropertyName string        `json:"property_name"`
	Month        int           `json:"month"`
	Year         int           `json:"year"`
	Rooms        []RoomDetails `json:"rooms"`
	Totals       Totals        `json:"totals"`
}

type RoomDetails struct {
	RoomID        snowflake.ID                `json:"room_id"`
	RoomNumber    string                      `json:"room_number"`
	IsOccupied    bool                        `json:"is_occupied"`
	MeterReadings []electricitydomain.Reading `json:"meter_readings"`
	Payments      []paymentdomain.Payment     `json:"payments"`
}

type Totals struct {
	Consumption       float64 `json:"consumption"`
	ElectricityAmount float64 `json:"electricity_amount"`
	PaymentAmount     float64 `json:"payment_amount"`
	PaidAmount        float64 `json:"paid_amount"`
	DueAmount         float64 `json:"due_amount"`
}

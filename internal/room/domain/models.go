package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/smallbiznis/roomledger/internal/tenant/domain"
)

type Room struct {
	ID         snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	PropertyID snowflake.ID `gorm:"not null;uniqueIndex:ux_rooms_property_number,priority:1" json:"property_id"`
	RoomNumber string       `gorm:"type:varchar(50);not null;uniqueIndex:ux_rooms_property_number,priority:2" json:"room_number"`
	IsOccupied bool         `gorm:"not null;default:false" json:"is_occupied"`
	Rate       *float64     `json:"rate"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null" json:"updated_at"`

	Tenants []tenantdomain.Tenant `gorm:"-" json:"tenants"`
}

func (Room) TableName() string { return "rooms" }

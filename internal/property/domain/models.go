package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Property struct {
	ID           snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	LandlordID   snowflake.ID `gorm:"not null;index" json:"landlord_id"`
	PropertyName string       `gorm:"type:varchar(255);not null" json:"property_name"`
	Address      string       `gorm:"type:varchar(512);not null" json:"address"`
	Landmark     string       `gorm:"type:varchar(255)" json:"landmark"`
	City         string       `gorm:"type:varchar(100)" json:"city"`
	State        string       `gorm:"type:varchar(100)" json:"state"`
	TotalRooms   int          `gorm:"not null;default:0" json:"total_rooms"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

func (Property) TableName() string { return "properties" }

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Tenant struct {
	ID             snowflake.ID                `gorm:"primaryKey;autoIncrement:false" json:"id"`
	PropertyID     snowflake.ID                `gorm:"not null;index" json:"property_id"`
	AssignedRoomID snowflake.ID                `gorm:"not null;index" json:"assigned_room_id"`
	Name           string                      `gorm:"type:varchar(255);not null" json:"name"`
	Email          string                      `gorm:"type:varchar(255);not null" json:"email"`
	MobileNumber   string                      `gorm:"type:varchar(15);not null" json:"mobile_number"`
	TotalPerson    int                         `gorm:"not null;default:1" json:"total_person"`
	AadharPhoto    string                      `gorm:"type:varchar(512)" json:"aadhar_photo"`
	OtherImages    datatypes.JSONSlice[string] `gorm:"type:json" json:"other_images"`
	MoveInDate     time.Time                   `gorm:"type:date;not null" json:"move_in_date"`
	IsActive       bool                        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }

// Documents returns every stored file path referenced by the tenant.
func (t Tenant) Documents() []string {
	paths := make([]string, 0, len(t.OtherImages)+1)
	if t.AadharPhoto != "" {
		paths = append(paths, t.AadharPhoto)
	}
	for _, p := range t.OtherImages {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

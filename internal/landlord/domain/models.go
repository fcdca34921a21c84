package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Landlord struct {
	ID             snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username       string       `gorm:"type:varchar(255);not null;index" json:"username"`
	Email          string       `gorm:"type:varchar(255);not null;uniqueIndex:ux_landlords_email" json:"email"`
	MobileNumber   string       `gorm:"type:varchar(15);not null" json:"mobile_number"`
	PasswordHash   string       `gorm:"column:password_hash;type:text" json:"-"`
	IsSubscription bool         `gorm:"not null;default:false" json:"is_subscription"`
	IsActive       bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}

func (Landlord) TableName() string { return "landlords" }

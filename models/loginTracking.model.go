package models

import (
	"time"
)

// LoginTracking records one successful login.
type LoginTracking struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	IPAddress string    `gorm:"type:varchar(64)" json:"ip_address"`
	Device    string    `gorm:"type:varchar(255)" json:"device"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username  string     `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email     string     `gorm:"default:''"`
	Password  string     `gorm:"not null"`
	LastLogin *time.Time `gorm:"default:NULL"`
	IsActive  bool       `gorm:"default:true"`
}

package models

import (
	"time"
)

// Stock is a listed company, keyed by its ticker symbol.
type Stock struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Ticker      string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"ticker"`
	CompanyName string    `gorm:"type:varchar(100);not null" json:"company_name"`
	Sector      string    `gorm:"type:varchar(50)" json:"sector"`
	LastUpdated time.Time `gorm:"autoUpdateTime" json:"last_updated"`
	CreatedAt   time.Time `json:"-"`

	Prices []StockPrice `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

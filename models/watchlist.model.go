package models

import (
	"time"
)

// Watchlist links a user to a stock they follow. The (user, stock) pair is unique.
type Watchlist struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_user_stock" json:"-"`
	StockID uint      `gorm:"not null;uniqueIndex:idx_user_stock" json:"stock_id"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Stock Stock `gorm:"foreignKey:StockID;constraint:OnDelete:CASCADE" json:"stock"`
}

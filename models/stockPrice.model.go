package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// StockPrice is one daily bar. At most one row exists per (stock, date).
type StockPrice struct {
	ID         uint            `gorm:"primaryKey" json:"-"`
	StockID    uint            `gorm:"not null;uniqueIndex:idx_stock_date" json:"-"`
	Date       datatypes.Date  `gorm:"not null;uniqueIndex:idx_stock_date" json:"date"`
	OpenPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"open_price"`
	ClosePrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"close_price"`
	HighPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"high_price"`
	LowPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"low_price"`
	Volume     int64           `gorm:"not null" json:"volume"`
	CreatedAt  time.Time       `json:"-"`

	Stock Stock `gorm:"foreignKey:StockID" json:"-"`
}

// Day returns the bar date as a time.Time at midnight UTC.
func (p StockPrice) Day() time.Time {
	y, m, d := time.Time(p.Date).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

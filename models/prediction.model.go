package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	ModelARIMA = "ARIMA"
	ModelLSTM  = "LSTM"
)

// Prediction stores one forecasted closing price produced by a model run.
type Prediction struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	StockID        uint            `gorm:"not null;index" json:"stock_id"`
	ModelType      string          `gorm:"type:varchar(10);not null" json:"model_type"`
	PredictedDate  datatypes.Date  `gorm:"not null" json:"predicted_date"`
	PredictedPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"predicted_price"`
	CreatedAt      time.Time       `json:"created_at"`

	Stock Stock `gorm:"foreignKey:StockID" json:"-"`
}

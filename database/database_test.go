package database

import (
	"testing"
	"time"

	"stockpredictor/config"
	"stockpredictor/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBDriver: "postgres", DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432"}
	assert.Contains(t, DSN(cfg), "host=db user=u password=p dbname=n port=5432")

	cfg.DBDriver = "mysql"
	assert.Equal(t, "u:p@tcp(db:5432)/n?charset=utf8mb4&parseTime=True&loc=UTC", DSN(cfg))

	cfg.DBDriver = "sqlite"
	assert.Equal(t, "n.db", DSN(cfg))

	cfg.DBDSN = "override"
	assert.Equal(t, "override", DSN(cfg))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.Error(t, err)
}

func TestStockPriceUniquePerDay(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	stock := models.Stock{Ticker: "AAPL", CompanyName: "Apple"}
	require.NoError(t, db.Create(&stock).Error)

	day := datatypes.Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	price := func() *models.StockPrice {
		return &models.StockPrice{
			StockID:    stock.ID,
			Date:       day,
			OpenPrice:  decimal.NewFromFloat(10),
			ClosePrice: decimal.NewFromFloat(11),
			HighPrice:  decimal.NewFromFloat(12),
			LowPrice:   decimal.NewFromFloat(9),
			Volume:     100,
		}
	}

	require.NoError(t, db.Create(price()).Error)
	assert.ErrorIs(t, db.Create(price()).Error, gorm.ErrDuplicatedKey)

	var count int64
	db.Model(&models.StockPrice{}).Where("stock_id = ?", stock.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestWatchlistDuplicateIsTranslated(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	user := models.User{Username: "alice", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	stock := models.Stock{Ticker: "AAPL", CompanyName: "Apple"}
	require.NoError(t, db.Create(&stock).Error)

	require.NoError(t, db.Create(&models.Watchlist{UserID: user.ID, StockID: stock.ID}).Error)
	err = db.Create(&models.Watchlist{UserID: user.ID, StockID: stock.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var count int64
	db.Model(&models.Watchlist{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

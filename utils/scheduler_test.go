package utils

import (
	"context"
	"testing"
	"time"

	"stockpredictor/database"
	"stockpredictor/forecast"
	"stockpredictor/marketdata"
	"stockpredictor/models"
	"stockpredictor/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type barSource struct{ bars []marketdata.Bar }

func (s barSource) History(ctx context.Context, ticker string, start, end time.Time) ([]marketdata.Bar, error) {
	return s.bars, nil
}

func TestInitializeSchedulersRejectsBadSchedule(t *testing.T) {
	_, err := InitializeSchedulers("not a cron", "")
	assert.Error(t, err)

	c, err := InitializeSchedulers("0 2 * * *", "")
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)

	c2, err := InitializeSchedulers("", "")
	require.NoError(t, err)
	defer c2.Stop()
	assert.Empty(t, c2.Entries())
}

func TestRunJobs(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Stock{Ticker: "AAPL", CompanyName: "Apple"}).Error)

	y, m, d := time.Now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	var bars []marketdata.Bar
	for i := 0; i < 70; i++ {
		c := decimal.NewFromFloat(100 + float64(i%7) + float64(i)/10)
		bars = append(bars, marketdata.Bar{Date: today.AddDate(0, 0, i-70), Open: c, High: c, Low: c, Close: c, Volume: 1})
	}

	store, err := forecast.NewFileStore(t.TempDir())
	require.NoError(t, err)
	cfg := forecast.DefaultLSTMConfig()
	cfg.Units = 3
	cfg.Epochs = 1
	services.App = &services.Registry{
		Refresher: services.NewHistoryService(db, barSource{bars: bars}),
		Forecast:  services.NewForecastService(db, store, cfg),
	}

	RunHistoryRefresh(context.Background())
	var count int64
	require.NoError(t, db.Model(&models.StockPrice{}).Count(&count).Error)
	assert.EqualValues(t, 70, count)

	RunLSTMRetrain(context.Background())
	assert.FileExists(t, store.LSTMPath("AAPL"))
}

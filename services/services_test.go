package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"stockpredictor/database"
	"stockpredictor/forecast"
	"stockpredictor/marketdata"
	"stockpredictor/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var today = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return today.Add(15 * time.Hour) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return db
}

func priceAt(i int) float64 {
	return 100 + 0.4*float64(i) + 3*math.Sin(float64(i)*0.7) + math.Sin(float64(i*i))
}

// seed stores n consecutive daily rows for ticker ending today.
func seed(t *testing.T, db *gorm.DB, ticker string, n int) models.Stock {
	t.Helper()
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = priceAt(i)
	}
	return seedCloses(t, db, ticker, closes)
}

// seedCloses stores one daily row per close, the last one dated today.
func seedCloses(t *testing.T, db *gorm.DB, ticker string, closes []float64) models.Stock {
	t.Helper()
	n := len(closes)
	stock := models.Stock{Ticker: ticker, CompanyName: ticker}
	require.NoError(t, db.Create(&stock).Error)
	rows := make([]models.StockPrice, n)
	for i := range rows {
		p := decimal.NewFromFloat(closes[i]).Round(2)
		rows[i] = models.StockPrice{
			StockID:    stock.ID,
			Date:       datatypes.Date(today.AddDate(0, 0, i-n+1)),
			OpenPrice:  p,
			HighPrice:  p.Add(decimal.NewFromInt(1)),
			LowPrice:   p.Sub(decimal.NewFromInt(1)),
			ClosePrice: p,
			Volume:     int64(1000 + i),
		}
	}
	if n > 0 {
		require.NoError(t, db.CreateInBatches(&rows, 100).Error)
	}
	return stock
}

type fakeSource struct {
	calls int
	bars  []marketdata.Bar
	err   error
}

func (s *fakeSource) History(ctx context.Context, ticker string, start, end time.Time) ([]marketdata.Bar, error) {
	s.calls++
	return s.bars, s.err
}

func fakeBars(n int, closeOffset float64) []marketdata.Bar {
	bars := make([]marketdata.Bar, n)
	for i := range bars {
		c := decimal.NewFromFloat(priceAt(i) + closeOffset)
		bars[i] = marketdata.Bar{
			Date:   today.AddDate(0, 0, i-n),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 500,
		}
	}
	return bars
}

func testLSTMConfig() forecast.LSTMConfig {
	cfg := forecast.DefaultLSTMConfig()
	cfg.Units = 4
	cfg.Epochs = 1
	cfg.BatchSize = 16
	return cfg
}

func newForecastService(t *testing.T, db *gorm.DB) (*ForecastService, *forecast.FileStore) {
	t.Helper()
	store, err := forecast.NewFileStore(t.TempDir())
	require.NoError(t, err)
	s := NewForecastService(db, store, testLSTMConfig())
	s.now = fixedClock
	return s, store
}

func TestHistoryFetchesOnceAndStoresNewestFirst(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{bars: fakeBars(10, 0)}
	s := NewHistoryService(db, src)
	s.now = fixedClock

	first, err := s.Get(context.Background(), " aapl ")
	require.NoError(t, err)
	require.Len(t, first, 10)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i-1].Day().After(first[i].Day()))
	}

	second, err := s.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, second, 10)
	assert.Equal(t, 1, src.calls)

	var stock models.Stock
	require.NoError(t, db.Where("ticker = ?", "AAPL").First(&stock).Error)
	assert.Equal(t, "AAPL", stock.CompanyName)

	var count int64
	require.NoError(t, db.Model(&models.StockPrice{}).Count(&count).Error)
	assert.EqualValues(t, 10, count)
}

func TestHistoryReturnsPartialStoredHistory(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, "MSFT", 3)
	src := &fakeSource{bars: fakeBars(10, 0)}
	s := NewHistoryService(db, src)

	rows, err := s.Get(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Zero(t, src.calls)
}

func TestHistoryNoData(t *testing.T) {
	db := newTestDB(t)
	for _, src := range []*fakeSource{{}, {err: errors.New("boom")}} {
		s := NewHistoryService(db, src)
		_, err := s.Get(context.Background(), "ZZZZ")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoDataAvailable)
		assert.Equal(t, 404, KindOf(err).Status())
	}

	var count int64
	require.NoError(t, db.Model(&models.Stock{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRefreshUpsertsExistingRows(t *testing.T) {
	db := newTestDB(t)
	s := NewHistoryService(db, &fakeSource{bars: fakeBars(5, 0)})
	s.now = fixedClock
	_, err := s.Get(context.Background(), "AAPL")
	require.NoError(t, err)

	r := NewHistoryService(db, &fakeSource{bars: fakeBars(6, 10)})
	r.now = fixedClock
	res, err := r.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RefreshResult{Updated: 1}, res)

	var rows []models.StockPrice
	require.NoError(t, db.Order("date").Find(&rows).Error)
	require.Len(t, rows, 6)
	want := decimal.NewFromFloat(priceAt(0) + 10).Round(2)
	assert.True(t, want.Equal(rows[0].ClosePrice), "got %s want %s", rows[0].ClosePrice, want)
}

func TestRefreshAllCountsSkipsAndFailures(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, "AAPL", 2)
	r := NewHistoryService(db, &fakeSource{})
	res, err := r.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RefreshResult{Skipped: 1}, res)

	r = NewHistoryService(db, &fakeSource{err: errors.New("timeout")})
	res, err = r.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RefreshResult{Failed: 1}, res)
}

func TestPredictARIMA(t *testing.T) {
	db := newTestDB(t)
	stock := seed(t, db, "AAPL", 45)
	s, store := newForecastService(t, db)

	out, err := s.PredictARIMA(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", out.Ticker)
	assert.Equal(t, models.ModelARIMA, out.ModelType)
	require.Len(t, out.Forecast, forecast.Horizon)
	for i, p := range out.Forecast {
		assert.Equal(t, today.AddDate(0, 0, i+1).Format("2006-01-02"), p.Date)
		assert.Equal(t, math.Round(p.PredictedPrice*100)/100, p.PredictedPrice)
	}
	assert.FileExists(t, store.ARIMAPath("AAPL"))

	var count int64
	require.NoError(t, db.Model(&models.Prediction{}).Where("stock_id = ? AND model_type = ?", stock.ID, models.ModelARIMA).Count(&count).Error)
	assert.EqualValues(t, forecast.Horizon, count)
}

func TestPredictARIMADegenerateSeries(t *testing.T) {
	ramp := make([]float64, 45)
	step := make([]float64, 45)
	for i := range ramp {
		ramp[i] = 100 + float64(i)
		step[i] = 100
	}
	step[len(step)-1] = 101

	cases := []struct {
		ticker string
		closes []float64
		first  float64
	}{
		{"RAMP", ramp, 145},
		{"STEP", step, 101},
	}
	for _, tc := range cases {
		t.Run(tc.ticker, func(t *testing.T) {
			db := newTestDB(t)
			seedCloses(t, db, tc.ticker, tc.closes)
			s, _ := newForecastService(t, db)

			out, err := s.PredictARIMA(context.Background(), tc.ticker)
			require.NoError(t, err)
			require.Len(t, out.Forecast, forecast.Horizon)
			assert.InDelta(t, tc.first, out.Forecast[0].PredictedPrice, 0.01)
		})
	}
}

func TestPredictARIMAInsufficientData(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, "AAPL", 29)
	s, _ := newForecastService(t, db)

	_, err := s.PredictARIMA(context.Background(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, "Not enough data to train the model.", err.Error())
}

func TestPredictUnknownStock(t *testing.T) {
	db := newTestDB(t)
	s, _ := newForecastService(t, db)

	_, err := s.PredictARIMA(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrStockNotFound)
	assert.Equal(t, "Stock with ticker NOPE does not exist.", err.Error())

	_, err = s.PredictLSTM(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrStockNotFound)
}

func TestLSTMNeedsSixtyRowsWhereARIMADoesNot(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, "AAPL", 45)
	s, _ := newForecastService(t, db)

	_, err := s.PredictARIMA(context.Background(), "AAPL")
	require.NoError(t, err)

	_, err = s.PredictLSTM(context.Background(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, "Not enough historical data for LSTM. Need at least 60 days, found 45.", err.Error())
}

func TestPredictLSTMTrainsOnceThenReuses(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, "AAPL", 90)
	s, store := newForecastService(t, db)

	out, err := s.PredictLSTM(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, models.ModelLSTM, out.ModelType)
	require.Len(t, out.Forecast, forecast.Horizon)
	assert.Equal(t, "2024-06-29", out.Forecast[0].Date)
	assert.FileExists(t, store.LSTMPath("AAPL"))

	saved, err := store.LoadLSTM("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 30, saved.Samples)

	again, err := s.PredictLSTM(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, out.Forecast, again.Forecast)

	reloaded, err := store.LoadLSTM("AAPL")
	require.NoError(t, err)
	assert.True(t, saved.TrainedAt.Equal(reloaded.TrainedAt))
}

func TestPredictLSTMWithExactlyLookBackRows(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, "AAPL", forecast.LookBack)
	s, _ := newForecastService(t, db)

	out, err := s.PredictLSTM(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, out.Forecast, forecast.Horizon)
}

func TestTrainAllSkipsShortHistories(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, "AAPL", 70)
	seed(t, db, "MSFT", 10)
	s, store := newForecastService(t, db)

	n, err := s.TrainAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, store.LSTMPath("AAPL"))
	assert.NoFileExists(t, store.LSTMPath("MSFT"))
}

func TestFetchThenForecastEndToEnd(t *testing.T) {
	db := newTestDB(t)
	src := &fakeSource{bars: fakeBars(90, 0)}
	h := NewHistoryService(db, src)
	h.now = fixedClock
	_, err := h.Get(context.Background(), "AAPL")
	require.NoError(t, err)

	s, _ := newForecastService(t, db)
	arima, err := s.PredictARIMA(context.Background(), "AAPL")
	require.NoError(t, err)
	lstm, err := s.PredictLSTM(context.Background(), "AAPL")
	require.NoError(t, err)

	// last stored bar is yesterday
	assert.Equal(t, "2024-06-28", arima.Forecast[0].Date)
	assert.Equal(t, arima.Forecast[0].Date, lstm.Forecast[0].Date)
}

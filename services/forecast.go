package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockpredictor/forecast"
	"stockpredictor/models"

	"github.com/jinzhu/now"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// ARIMAWindowDays is the calendar window the ARIMA fit reads.
	ARIMAWindowDays = 60
	// ARIMAMinRows is the fewest stored closes ARIMA accepts.
	ARIMAMinRows = 30
	// LSTMWindowYears is the calendar window LSTM training and inference read.
	LSTMWindowYears = 3
)

// ForecastPoint is one entry of a forecast response.
type ForecastPoint struct {
	Date           string  `json:"date"`
	PredictedPrice float64 `json:"predicted_price"`
}

// Forecast is the response body of the prediction endpoints.
type Forecast struct {
	Ticker    string          `json:"ticker"`
	ModelType string          `json:"model_type"`
	Forecast  []ForecastPoint `json:"forecast"`
}

// ForecastService fits models over stored closes and records the results.
type ForecastService struct {
	db      *gorm.DB
	store   forecast.ArtifactStore
	lstmCfg forecast.LSTMConfig
	now     func() time.Time
}

func NewForecastService(db *gorm.DB, store forecast.ArtifactStore, lstmCfg forecast.LSTMConfig) *ForecastService {
	return &ForecastService{
		db:      db,
		store:   store,
		lstmCfg: lstmCfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// series is a run of stored closes in date order.
type series struct {
	stock  models.Stock
	closes []float64
	last   time.Time
}

// load reads closes dated within [since, today] for ticker, oldest first.
func (s *ForecastService) load(ctx context.Context, ticker string, since time.Time) (*series, error) {
	db := s.db.WithContext(ctx)

	var stock models.Stock
	if err := db.Where("ticker = ?", ticker).First(&stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindStockNotFound, "Stock with ticker %s does not exist.", ticker)
		}
		return nil, fmt.Errorf("lookup stock %s: %w", ticker, err)
	}

	today := now.With(s.now()).BeginningOfDay()
	var prices []models.StockPrice
	err := db.Where("stock_id = ? AND date >= ? AND date <= ?",
		stock.ID, datatypes.Date(since), datatypes.Date(today)).
		Order("date").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("load prices for %s: %w", ticker, err)
	}

	out := &series{stock: stock, closes: make([]float64, len(prices))}
	for i, p := range prices {
		out.closes[i] = p.ClosePrice.InexactFloat64()
	}
	if len(prices) > 0 {
		out.last = prices[len(prices)-1].Day()
	}
	return out, nil
}

// PredictARIMA fits ARIMA(5,1,0) on the last 60 calendar days of closes and
// forecasts the next seven days.
func (s *ForecastService) PredictARIMA(ctx context.Context, ticker string) (*Forecast, error) {
	ticker = NormalizeTicker(ticker)
	since := now.With(s.now()).BeginningOfDay().AddDate(0, 0, -ARIMAWindowDays)
	data, err := s.load(ctx, ticker, since)
	if err != nil {
		return nil, err
	}
	if len(data.closes) < ARIMAMinRows {
		return nil, newError(KindInsufficientData, "Not enough data to train the model.")
	}

	closes, err := forecast.ForwardFill(data.closes)
	if err != nil {
		return nil, fitError("ARIMA", err)
	}
	model, err := forecast.FitARIMA(closes)
	if err != nil {
		return nil, fitError("ARIMA", err)
	}
	if err := s.store.SaveARIMA(ticker, model); err != nil {
		return nil, fitError("ARIMA", err)
	}

	points := forecast.Attach(data.last, model.Forecast(forecast.Horizon))
	return s.record(ctx, data.stock, models.ModelARIMA, points)
}

// PredictLSTM forecasts from the saved network for ticker. When none is saved
// yet it trains one first.
func (s *ForecastService) PredictLSTM(ctx context.Context, ticker string) (*Forecast, error) {
	ticker = NormalizeTicker(ticker)
	data, err := s.lstmSeries(ctx, ticker)
	if err != nil {
		return nil, err
	}

	artifact, err := s.store.LoadLSTM(ticker)
	if err != nil {
		if !errors.Is(err, forecast.ErrNoArtifact) {
			log.Warn().Err(err).Str("ticker", ticker).Msg("Saved LSTM unusable, retraining")
		}
		artifact, err = s.train(ticker, data)
		if err != nil {
			return nil, err
		}
	}

	window := artifact.Scaler.TransformAll(data.closes[len(data.closes)-forecast.LookBack:])
	values, err := forecast.ForecastLSTM(artifact.Network, artifact.Scaler, window)
	if err != nil {
		return nil, fitError("LSTM", err)
	}

	points := forecast.Attach(data.last, values)
	return s.record(ctx, data.stock, models.ModelLSTM, points)
}

// TrainLSTM fits and saves a fresh network for ticker.
func (s *ForecastService) TrainLSTM(ctx context.Context, ticker string) (*forecast.LSTMArtifact, error) {
	ticker = NormalizeTicker(ticker)
	data, err := s.lstmSeries(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return s.train(ticker, data)
}

// TrainAll retrains the network of every stored stock and returns how many succeeded.
func (s *ForecastService) TrainAll(ctx context.Context) (int, error) {
	var stocks []models.Stock
	if err := s.db.WithContext(ctx).Order("ticker").Find(&stocks).Error; err != nil {
		return 0, fmt.Errorf("list stocks: %w", err)
	}
	trained := 0
	for _, stock := range stocks {
		if err := ctx.Err(); err != nil {
			return trained, err
		}
		a, err := s.TrainLSTM(ctx, stock.Ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", stock.Ticker).Msg("LSTM training skipped")
			continue
		}
		trained++
		log.Info().Str("ticker", stock.Ticker).Int("samples", a.Samples).Float64("loss", a.Loss).Msg("LSTM trained")
	}
	return trained, nil
}

func (s *ForecastService) lstmSeries(ctx context.Context, ticker string) (*series, error) {
	since := now.With(s.now()).BeginningOfDay().AddDate(-LSTMWindowYears, 0, 0)
	data, err := s.load(ctx, ticker, since)
	if err != nil {
		return nil, err
	}
	if len(data.closes) < forecast.LookBack {
		return nil, newError(KindInsufficientData,
			"Not enough historical data for LSTM. Need at least %d days, found %d.", forecast.LookBack, len(data.closes))
	}
	closes, err := forecast.ForwardFill(data.closes)
	if err != nil {
		return nil, fitError("LSTM", err)
	}
	data.closes = closes
	return data, nil
}

func (s *ForecastService) train(ticker string, data *series) (*forecast.LSTMArtifact, error) {
	scaler := forecast.FitMinMax(data.closes)
	xs, ys := forecast.Windows(scaler.TransformAll(data.closes), forecast.LookBack)
	if len(xs) == 0 {
		log.Warn().Str("ticker", ticker).Msg("No training windows, using an untrained network")
	}

	net, loss, err := forecast.TrainLSTM(xs, ys, s.lstmCfg)
	if err != nil {
		return nil, fitError("LSTM", err)
	}

	artifact := &forecast.LSTMArtifact{
		Ticker:         ticker,
		Config:         s.lstmCfg,
		Scaler:         scaler,
		Network:        net,
		TrainedThrough: data.last,
		TrainedAt:      s.now(),
		Samples:        len(xs),
		Loss:           loss,
	}
	if err := s.store.SaveLSTM(ticker, artifact); err != nil {
		return nil, fitError("LSTM", err)
	}
	return artifact, nil
}

// record stores one Prediction per point and builds the response body.
func (s *ForecastService) record(ctx context.Context, stock models.Stock, modelType string, points []forecast.Point) (*Forecast, error) {
	rows := make([]models.Prediction, len(points))
	out := &Forecast{Ticker: stock.Ticker, ModelType: modelType, Forecast: make([]ForecastPoint, len(points))}
	for i, p := range points {
		rows[i] = models.Prediction{
			StockID:        stock.ID,
			ModelType:      modelType,
			PredictedDate:  datatypes.Date(p.Date),
			PredictedPrice: decimal.NewFromFloat(p.Price).Round(2),
		}
		out.Forecast[i] = ForecastPoint{Date: p.Date.Format("2006-01-02"), PredictedPrice: p.Price}
	}
	if len(rows) > 0 {
		if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return nil, fmt.Errorf("record predictions: %w", err)
		}
	}
	return out, nil
}

func fitError(model string, err error) error {
	return &Error{
		Kind:    KindFitError,
		Message: fmt.Sprintf("Error training/predicting with %s: %v", model, err),
		Err:     err,
	}
}

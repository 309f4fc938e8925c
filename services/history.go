package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockpredictor/marketdata"
	"stockpredictor/models"

	"github.com/jinzhu/now"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryDays is how far back a history fetch reaches.
const HistoryDays = 365

// HistoryService serves stored price history, filling the store from the
// market-data source on a miss.
type HistoryService struct {
	db     *gorm.DB
	source marketdata.Source
	now    func() time.Time
}

func NewHistoryService(db *gorm.DB, source marketdata.Source) *HistoryService {
	return &HistoryService{db: db, source: source, now: func() time.Time { return time.Now().UTC() }}
}

// NormalizeTicker trims and uppercases a ticker from a URL or body.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Get returns every stored row for ticker, newest first. When nothing is
// stored it fetches the last year, stores it and returns the stored set.
// Partially populated histories are returned as they are.
func (s *HistoryService) Get(ctx context.Context, ticker string) ([]models.StockPrice, error) {
	ticker = NormalizeTicker(ticker)
	db := s.db.WithContext(ctx)

	var stock models.Stock
	err := db.Where("ticker = ?", ticker).First(&stock).Error
	switch {
	case err == nil:
		prices, err := s.prices(ctx, stock.ID)
		if err != nil {
			return nil, err
		}
		if len(prices) > 0 {
			return prices, nil
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("lookup stock %s: %w", ticker, err)
	}

	log.Info().Str("ticker", ticker).Msg("No stored history, fetching from market data source")

	end := s.now()
	start := end.AddDate(0, 0, -HistoryDays)
	bars, err := s.source.History(ctx, ticker, start, end)
	if err != nil || len(bars) == 0 {
		log.Warn().Err(err).Str("ticker", ticker).Msg("Market data fetch returned nothing")
		return nil, newError(KindNoDataAvailable, "Could not retrieve data for %s from the market data provider.", ticker)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.Stock{Ticker: ticker}).
			Attrs(models.Stock{CompanyName: ticker}).
			FirstOrCreate(&stock).Error; err != nil {
			return fmt.Errorf("create stock %s: %w", ticker, err)
		}
		rows := toPrices(stock.ID, bars)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, 200).Error; err != nil {
			return fmt.Errorf("store history for %s: %w", ticker, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.prices(ctx, stock.ID)
}

// RefreshResult summarises a RefreshAll run.
type RefreshResult struct {
	Updated int
	Skipped int
	Failed  int
}

// Refresh fetches the last year for one stock and upserts every row.
func (s *HistoryService) Refresh(ctx context.Context, stock models.Stock) (int, error) {
	end := s.now()
	start := end.AddDate(0, 0, -HistoryDays)
	bars, err := s.source.History(ctx, stock.Ticker, start, end)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, marketdata.ErrNoData
	}

	rows := toPrices(stock.ID, bars)
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stock_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"open_price", "high_price", "low_price", "close_price", "volume"}),
	}).CreateInBatches(&rows, 200).Error
	if err != nil {
		return 0, fmt.Errorf("upsert history for %s: %w", stock.Ticker, err)
	}

	// bump last_updated
	if err := s.db.WithContext(ctx).Model(&stock).Update("last_updated", s.now()).Error; err != nil {
		log.Warn().Err(err).Str("ticker", stock.Ticker).Msg("Failed to touch stock")
	}
	return len(rows), nil
}

// RefreshAll refreshes every stored stock. One failing ticker does not stop the run.
func (s *HistoryService) RefreshAll(ctx context.Context) (RefreshResult, error) {
	var res RefreshResult
	var stocks []models.Stock
	if err := s.db.WithContext(ctx).Order("ticker").Find(&stocks).Error; err != nil {
		return res, fmt.Errorf("list stocks: %w", err)
	}
	if len(stocks) == 0 {
		log.Warn().Msg("No stocks found in the database")
		return res, nil
	}

	for _, stock := range stocks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n, err := s.Refresh(ctx, stock)
		switch {
		case errors.Is(err, marketdata.ErrNoData):
			res.Skipped++
			log.Warn().Str("ticker", stock.Ticker).Msg("No data found")
		case err != nil:
			res.Failed++
			log.Error().Err(err).Str("ticker", stock.Ticker).Msg("History refresh failed")
		default:
			res.Updated++
			log.Info().Str("ticker", stock.Ticker).Int("rows", n).Msg("History updated")
		}
	}
	return res, nil
}

func (s *HistoryService) prices(ctx context.Context, stockID uint) ([]models.StockPrice, error) {
	var prices []models.StockPrice
	if err := s.db.WithContext(ctx).Where("stock_id = ?", stockID).Order("date DESC").Find(&prices).Error; err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	return prices, nil
}

func toPrices(stockID uint, bars []marketdata.Bar) []models.StockPrice {
	rows := make([]models.StockPrice, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, models.StockPrice{
			StockID:    stockID,
			Date:       datatypes.Date(now.With(b.Date).BeginningOfDay()),
			OpenPrice:  b.Open.Round(2),
			HighPrice:  b.High.Round(2),
			LowPrice:   b.Low.Round(2),
			ClosePrice: b.Close.Round(2),
			Volume:     b.Volume,
		})
	}
	return rows
}

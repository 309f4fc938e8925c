package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"stockpredictor/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ImportResult counts what an ImportStocks run did.
type ImportResult struct {
	Inserted int
	Updated  int
	Skipped  int
}

// ImportStocks reads a stock master CSV with a header row naming at least
// "ticker" and optionally "company_name" and "sector". Existing tickers are
// updated in place.
func ImportStocks(ctx context.Context, db *gorm.DB, r io.Reader) (ImportResult, error) {
	var res ImportResult

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return res, errors.New("csv file is empty")
	}
	if err != nil {
		return res, fmt.Errorf("read csv header: %w", err)
	}

	headerIndex := make(map[string]int, len(header))
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := headerIndex["ticker"]; !ok {
		return res, errors.New(`csv header has no "ticker" column`)
	}

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read csv line %d: %w", line, err)
		}

		ticker := NormalizeTicker(getField(row, headerIndex, "ticker"))
		if ticker == "" || len(ticker) > 10 {
			res.Skipped++
			continue
		}
		name := getField(row, headerIndex, "company_name")
		if name == "" {
			name = ticker
		}
		sector := getField(row, headerIndex, "sector")

		var existing models.Stock
		err = db.WithContext(ctx).Where("ticker = ?", ticker).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			stock := models.Stock{Ticker: ticker, CompanyName: name, Sector: sector}
			if err := db.WithContext(ctx).Create(&stock).Error; err != nil {
				log.Error().Err(err).Str("ticker", ticker).Msg("Error inserting stock")
				res.Skipped++
				continue
			}
			res.Inserted++
		case err != nil:
			return res, fmt.Errorf("lookup stock %s: %w", ticker, err)
		default:
			existing.CompanyName = name
			existing.Sector = sector
			if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
				log.Error().Err(err).Str("ticker", ticker).Msg("Error updating stock")
				res.Skipped++
				continue
			}
			res.Updated++
		}
	}

	log.Info().Int("inserted", res.Inserted).Int("updated", res.Updated).Int("skipped", res.Skipped).Msg("Stock import complete")
	return res, nil
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

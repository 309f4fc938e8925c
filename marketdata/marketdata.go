package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoData is returned when the source answers but has no bars for the range.
var ErrNoData = errors.New("no market data found")

// Bar is one daily OHLCV row.
type Bar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Source returns time-ordered daily bars for a ticker in [start, end).
type Source interface {
	History(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error)
}

// DayString formats a date the way range arguments are keyed.
func DayString(t time.Time) string {
	return t.Format("2006-01-02")
}

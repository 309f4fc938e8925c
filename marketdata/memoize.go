package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stockpredictor/cache"

	"github.com/rs/zerolog/log"
)

// Memoized caches a Source by the exact (ticker, start day, end day) triple.
// Only successful, non-empty results are cached.
type Memoized struct {
	src   Source
	store cache.Store
	ttl   time.Duration
}

func NewMemoized(src Source, store cache.Store, ttl time.Duration) *Memoized {
	return &Memoized{src: src, store: store, ttl: ttl}
}

func cacheKey(ticker string, start, end time.Time) string {
	return fmt.Sprintf("marketdata:%s:%s:%s", strings.ToUpper(ticker), DayString(start), DayString(end))
}

func (m *Memoized) History(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	key := cacheKey(ticker, start, end)

	raw, found, err := m.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Market data cache read failed")
	}
	if found {
		var bars []Bar
		if err := json.Unmarshal(raw, &bars); err == nil {
			return bars, nil
		}
		log.Warn().Str("key", key).Msg("Dropping undecodable market data cache entry")
		_ = m.store.Delete(ctx, key)
	}

	bars, err := m.src.History(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	if raw, err := json.Marshal(bars); err == nil {
		if err := m.store.Set(ctx, key, raw, m.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Market data cache write failed")
		}
	}
	return bars, nil
}

package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const chartPath = "/v8/finance/chart/{ticker}"

// YahooClient reads daily history from the Yahoo Finance chart API.
type YahooClient struct {
	client *resty.Client
}

func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; stockpredictor/1.0)")
	return &YahooClient{client: client}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		GMTOffset int64 `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// History fetches daily bars. Rows with missing fields are dropped.
func (c *YahooClient) History(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	var out chartResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("ticker", strings.ToUpper(ticker)).
		SetQueryParams(map[string]string{
			"period1":  strconv.FormatInt(start.Unix(), 10),
			"period2":  strconv.FormatInt(end.Unix(), 10),
			"interval": "1d",
			"events":   "history",
		}).
		SetResult(&out).
		SetError(&out).
		Get(chartPath)
	if err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", ticker, err)
	}
	if resp.IsError() {
		if out.Chart.Error != nil {
			return nil, fmt.Errorf("chart api %d for %s: %s", resp.StatusCode(), ticker, out.Chart.Error.Description)
		}
		return nil, fmt.Errorf("chart api %d for %s", resp.StatusCode(), ticker)
	}
	if len(out.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	bars := parseChart(out.Chart.Result[0])
	if len(bars) == 0 {
		log.Warn().Str("ticker", ticker).Str("start", DayString(start)).Msg("No market data found")
		return nil, ErrNoData
	}
	return bars, nil
}

func parseChart(r chartResult) []Bar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]

	bars := make([]Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(q.Open) || i >= len(q.High) || i >= len(q.Low) || i >= len(q.Close) || i >= len(q.Volume) {
			break
		}
		if q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || q.Close[i] == nil || q.Volume[i] == nil {
			continue
		}
		local := time.Unix(ts+r.Meta.GMTOffset, 0).UTC()
		bars = append(bars, Bar{
			Date:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Open:   decimal.NewFromFloat(*q.Open[i]).Round(2),
			High:   decimal.NewFromFloat(*q.High[i]).Round(2),
			Low:    decimal.NewFromFloat(*q.Low[i]).Round(2),
			Close:  decimal.NewFromFloat(*q.Close[i]).Round(2),
			Volume: *q.Volume[i],
		})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}

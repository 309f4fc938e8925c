// Package forecast holds the numerical models behind the prediction endpoints.
package forecast

import (
	"errors"
	"math"
	"time"
)

const (
	// Horizon is the number of calendar days every forecast covers.
	Horizon = 7
	// LookBack is the LSTM input window length.
	LookBack = 60
)

var (
	ErrTooShort   = errors.New("series too short")
	ErrNotFinite  = errors.New("series contains non-finite values")
	ErrSingular   = errors.New("design matrix is singular")
	ErrBadWeights = errors.New("model produced non-finite values")
)

// Point is one forecasted (date, price) pair.
type Point struct {
	Date  time.Time
	Price float64
}

// Dates returns the Horizon calendar days that follow last.
func Dates(last time.Time) []time.Time {
	y, m, d := last.Date()
	base := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, Horizon)
	for i := range out {
		out[i] = base.AddDate(0, 0, i+1)
	}
	return out
}

// Attach pairs forecast values with the days after last, rounding prices to cents.
func Attach(last time.Time, values []float64) []Point {
	dates := Dates(last)
	n := len(values)
	if n > Horizon {
		n = Horizon
	}
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		out[i] = Point{Date: dates[i], Price: math.Round(values[i]*100) / 100}
	}
	return out
}

// ForwardFill replaces missing closes (non-positive or non-finite) with the
// previous valid value. Leading gaps take the first valid value.
func ForwardFill(xs []float64) ([]float64, error) {
	out := make([]float64, len(xs))
	first := -1
	for i, x := range xs {
		if valid(x) {
			first = i
			break
		}
	}
	if first < 0 {
		return nil, ErrNotFinite
	}
	last := xs[first]
	for i, x := range xs {
		if valid(x) {
			last = x
		}
		out[i] = last
	}
	return out, nil
}

func valid(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}

package forecast

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// arSeries builds levels whose first differences follow d_t = phi*d_{t-1} + e_t.
func arSeries(n int, phi float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	out[0] = 100
	var d float64
	for i := 1; i < n; i++ {
		d = phi*d + rng.NormFloat64()
		out[i] = out[i-1] + d
	}
	return out
}

func TestFitARIMARecoversFirstLag(t *testing.T) {
	series := arSeries(2000, 0.6, 1)

	m, err := FitARIMA(series)
	require.NoError(t, err)

	assert.Equal(t, [3]int{5, 1, 0}, m.Order)
	require.Len(t, m.Coefficients, 5)
	assert.InDelta(t, 0.6, m.Coefficients[0], 0.08)
	for _, c := range m.Coefficients[1:] {
		assert.InDelta(t, 0, c, 0.08)
	}
	assert.InDelta(t, 1.0, m.Sigma2, 0.15)
	assert.Equal(t, 2000, m.NObs)
}

func TestARIMAForecastIntegratesDifferences(t *testing.T) {
	m := &ARIMAModel{
		Order:        ARIMAOrder,
		Coefficients: []float64{0.5, 0, 0, 0, 0},
		LastDiffs:    []float64{0, 0, 0, 0, 2},
		LastLevel:    10,
	}

	got := m.Forecast(3)
	assert.InDeltaSlice(t, []float64{11, 11.5, 11.75}, got, 1e-9)
}

func TestFitARIMAConstantSeries(t *testing.T) {
	series := make([]float64, 40)
	for i := range series {
		series[i] = 42
	}

	m, err := FitARIMA(series)
	require.NoError(t, err)
	for _, v := range m.Forecast(Horizon) {
		assert.Equal(t, 42.0, v)
	}
}

func TestFitARIMAErrors(t *testing.T) {
	_, err := FitARIMA([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrTooShort)

	_, err = FitARIMA(nil)
	assert.ErrorIs(t, err, ErrTooShort)

	series := arSeries(40, 0.3, 2)
	series[10] = math.NaN()
	_, err = FitARIMA(series)
	assert.ErrorIs(t, err, ErrNotFinite)
}

func TestFitARIMALinearRamp(t *testing.T) {
	// constant differences make every lag column identical
	series := make([]float64, 45)
	for i := range series {
		series[i] = 100 + float64(i)
	}

	m, err := FitARIMA(series)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, floats.Sum(m.Coefficients), 1e-9)

	got := m.Forecast(Horizon)
	require.Len(t, got, Horizon)
	for i, v := range got {
		assert.InDelta(t, 145+float64(i), v, 1e-6)
	}
}

func TestFitARIMAFlatThenStep(t *testing.T) {
	series := make([]float64, 45)
	for i := range series {
		series[i] = 100
	}
	series[len(series)-1] = 101

	m, err := FitARIMA(series)
	require.NoError(t, err)

	for _, v := range m.Forecast(Horizon) {
		assert.False(t, math.IsNaN(v))
		assert.InDelta(t, 101.0, v, 1e-9)
	}
}

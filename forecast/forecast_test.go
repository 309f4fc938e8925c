package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatesAreConsecutiveCalendarDays(t *testing.T) {
	last := time.Date(2024, 2, 27, 15, 30, 0, 0, time.UTC)
	dates := Dates(last)

	require.Len(t, dates, Horizon)
	want := []string{"2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05"}
	for i, d := range dates {
		assert.Equal(t, want[i], d.Format("2006-01-02"))
	}
}

func TestAttachRoundsToCents(t *testing.T) {
	pts := Attach(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), []float64{1.234, 5.678, 9.999, 1, 2, 3, 4})
	require.Len(t, pts, Horizon)
	assert.Equal(t, 1.23, pts[0].Price)
	assert.Equal(t, 5.68, pts[1].Price)
	assert.Equal(t, 10.0, pts[2].Price)
	assert.Equal(t, "2024-01-02", pts[0].Date.Format("2006-01-02"))
}

func TestForwardFill(t *testing.T) {
	got, err := ForwardFill([]float64{0, 10, 0, 12, -1, 13})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 10, 10, 12, 12, 13}, got)

	_, err = ForwardFill([]float64{0, 0})
	assert.ErrorIs(t, err, ErrNotFinite)
}

func TestMinMaxScaler(t *testing.T) {
	s := FitMinMax([]float64{10, 20, 15})
	assert.Equal(t, []float64{0, 1, 0.5}, s.TransformAll([]float64{10, 20, 15}))
	assert.InDelta(t, 17.5, s.Inverse(0.75), 1e-12)

	flat := FitMinMax([]float64{5, 5})
	assert.Equal(t, 0.0, flat.Transform(5))
	assert.Equal(t, 5.0, flat.Inverse(0))
}

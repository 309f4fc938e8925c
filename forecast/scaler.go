package forecast

import (
	"gonum.org/v1/gonum/floats"
)

// MinMaxScaler maps values from [Min, Max] onto [0, 1].
type MinMaxScaler struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FitMinMax fits a scaler on xs. xs must not be empty.
func FitMinMax(xs []float64) MinMaxScaler {
	return MinMaxScaler{Min: floats.Min(xs), Max: floats.Max(xs)}
}

func (s MinMaxScaler) span() float64 {
	if s.Max == s.Min {
		return 1
	}
	return s.Max - s.Min
}

func (s MinMaxScaler) Transform(x float64) float64 {
	return (x - s.Min) / s.span()
}

func (s MinMaxScaler) TransformAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = s.Transform(x)
	}
	return out
}

func (s MinMaxScaler) Inverse(y float64) float64 {
	return y*s.span() + s.Min
}

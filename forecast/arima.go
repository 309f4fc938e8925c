package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rankTol drops singular values below rankTol times the largest one.
const rankTol = 1e-10

// ARIMAOrder is the fixed (p, d, q) order used for every fit.
var ARIMAOrder = [3]int{5, 1, 0}

// ARIMAModel is a fitted ARIMA(p,1,0): an AR(p) without constant on the first
// differences, estimated by conditional least squares.
type ARIMAModel struct {
	Order        [3]int    `json:"order"`
	Coefficients []float64 `json:"coefficients"`
	Sigma2       float64   `json:"sigma2"`
	NObs         int       `json:"nobs"`
	// LastDiffs holds the p most recent differences, oldest first.
	LastDiffs []float64 `json:"last_diffs"`
	LastLevel float64   `json:"last_level"`
}

// FitARIMA fits the fixed-order model to a level series. A rank-deficient lag
// matrix (a straight ramp, a flat run) gets the minimum-norm solution.
func FitARIMA(series []float64) (*ARIMAModel, error) {
	p := ARIMAOrder[0]
	if len(series) < 2 {
		return nil, fmt.Errorf("%w: have %d observations", ErrTooShort, len(series))
	}
	for _, x := range series {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, ErrNotFinite
		}
	}

	diffs := make([]float64, len(series)-1)
	floats.SubTo(diffs, series[1:], series[:len(series)-1])
	rows := len(diffs) - p
	if rows <= p {
		return nil, fmt.Errorf("%w: need more than %d observations, have %d", ErrTooShort, 2*p+1, len(series))
	}

	coef := make([]float64, p)
	if floats.Norm(diffs, 2) > 0 {
		x := mat.NewDense(rows, p, nil)
		y := mat.NewVecDense(rows, nil)
		for r := 0; r < rows; r++ {
			t := r + p
			for lag := 1; lag <= p; lag++ {
				x.Set(r, lag-1, diffs[t-lag])
			}
			y.SetVec(r, diffs[t])
		}

		var svd mat.SVD
		if !svd.Factorize(x, mat.SVDThin) {
			return nil, fmt.Errorf("%w: svd did not converge", ErrSingular)
		}
		// an all-zero lag matrix leaves every coefficient at zero
		if rank := svd.Rank(rankTol); rank > 0 {
			var beta mat.VecDense
			svd.SolveVecTo(&beta, y, rank)
			for i := range coef {
				coef[i] = beta.AtVec(i)
			}
		}
	}

	model := &ARIMAModel{
		Order:        ARIMAOrder,
		Coefficients: coef,
		NObs:         len(series),
		LastDiffs:    append([]float64(nil), diffs[len(diffs)-p:]...),
		LastLevel:    series[len(series)-1],
	}

	var sse float64
	for t := p; t < len(diffs); t++ {
		e := diffs[t] - model.step(diffs[t-p:t])
		sse += e * e
	}
	model.Sigma2 = sse / float64(rows)

	for _, c := range coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, ErrBadWeights
		}
	}
	return model, nil
}

// step predicts the next difference from the p most recent ones (oldest first).
func (m *ARIMAModel) step(recent []float64) float64 {
	var next float64
	n := len(recent)
	for lag := 1; lag <= len(m.Coefficients); lag++ {
		next += m.Coefficients[lag-1] * recent[n-lag]
	}
	return next
}

// Forecast returns the next steps levels.
func (m *ARIMAModel) Forecast(steps int) []float64 {
	hist := append([]float64(nil), m.LastDiffs...)
	level := m.LastLevel
	out := make([]float64, steps)
	for i := 0; i < steps; i++ {
		d := m.step(hist)
		hist = append(hist[1:], d)
		level += d
		out[i] = level
	}
	return out
}

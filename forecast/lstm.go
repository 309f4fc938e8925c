package forecast

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// LSTMConfig holds the network shape and training schedule.
type LSTMConfig struct {
	Units        int     `json:"units"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	Dropout      float64 `json:"dropout"`
	LearningRate float64 `json:"learning_rate"`
	Seed         int64   `json:"seed"`
}

func DefaultLSTMConfig() LSTMConfig {
	return LSTMConfig{
		Units:        50,
		Epochs:       25,
		BatchSize:    32,
		Dropout:      0.2,
		LearningRate: 0.001,
		Seed:         42,
	}
}

func (c LSTMConfig) validate() error {
	if c.Units < 1 || c.Epochs < 0 || c.BatchSize < 1 {
		return fmt.Errorf("invalid lstm config: units=%d epochs=%d batch=%d", c.Units, c.Epochs, c.BatchSize)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("invalid lstm config: dropout=%v", c.Dropout)
	}
	return nil
}

// LSTMLayer is one recurrent layer. W is 4H x (In+H), row-major, with the
// gate blocks ordered input, forget, cell, output.
type LSTMLayer struct {
	In     int       `json:"in"`
	Hidden int       `json:"hidden"`
	W      []float64 `json:"w"`
	B      []float64 `json:"b"`
}

func newLSTMLayer(in, hidden int, rng *rand.Rand) *LSTMLayer {
	cols := in + hidden
	l := &LSTMLayer{In: in, Hidden: hidden, W: make([]float64, 4*hidden*cols), B: make([]float64, 4*hidden)}
	limit := math.Sqrt(6 / float64(cols+4*hidden))
	for i := range l.W {
		l.W[i] = (rng.Float64()*2 - 1) * limit
	}
	for j := hidden; j < 2*hidden; j++ {
		l.B[j] = 1 // forget gate bias
	}
	return l
}

func (l *LSTMLayer) row(r int) []float64 {
	cols := l.In + l.Hidden
	return l.W[r*cols : (r+1)*cols]
}

// stepCache keeps what backprop needs from one time step.
type stepCache struct {
	xh         []float64 // [x_t, h_{t-1}]
	cPrev      []float64
	i, f, g, o []float64
	tanhC      []float64
}

// forward runs the layer over a sequence of inputs (T x In) and returns the
// hidden states (T x H) plus per-step caches.
func (l *LSTMLayer) forward(xs [][]float64, keep bool) ([][]float64, []stepCache) {
	h := make([]float64, l.Hidden)
	c := make([]float64, l.Hidden)
	hs := make([][]float64, len(xs))
	var caches []stepCache
	if keep {
		caches = make([]stepCache, len(xs))
	}

	H := l.Hidden
	for t, x := range xs {
		xh := make([]float64, l.In+H)
		copy(xh, x)
		copy(xh[l.In:], h)

		ig := make([]float64, H)
		fg := make([]float64, H)
		gg := make([]float64, H)
		og := make([]float64, H)
		for j := 0; j < H; j++ {
			ig[j] = sigmoid(floats.Dot(l.row(j), xh) + l.B[j])
			fg[j] = sigmoid(floats.Dot(l.row(H+j), xh) + l.B[H+j])
			gg[j] = math.Tanh(floats.Dot(l.row(2*H+j), xh) + l.B[2*H+j])
			og[j] = sigmoid(floats.Dot(l.row(3*H+j), xh) + l.B[3*H+j])
		}

		cNew := make([]float64, H)
		tanhC := make([]float64, H)
		hNew := make([]float64, H)
		for j := 0; j < H; j++ {
			cNew[j] = fg[j]*c[j] + ig[j]*gg[j]
			tanhC[j] = math.Tanh(cNew[j])
			hNew[j] = og[j] * tanhC[j]
		}

		if keep {
			caches[t] = stepCache{xh: xh, cPrev: c, i: ig, f: fg, g: gg, o: og, tanhC: tanhC}
		}
		h, c = hNew, cNew
		hs[t] = hNew
	}
	return hs, caches
}

// backward accumulates parameter gradients into dW/dB given the loss gradient
// with respect to every output hidden state, and returns the gradient with
// respect to every input.
func (l *LSTMLayer) backward(caches []stepCache, dHs [][]float64, dW, dB []float64) [][]float64 {
	H := l.Hidden
	cols := l.In + H
	dXs := make([][]float64, len(caches))
	dhNext := make([]float64, H)
	dcNext := make([]float64, H)
	dz := make([]float64, 4*H)

	for t := len(caches) - 1; t >= 0; t-- {
		sc := caches[t]
		for j := 0; j < H; j++ {
			dh := dhNext[j]
			if dHs[t] != nil {
				dh += dHs[t][j]
			}
			do := dh * sc.tanhC[j]
			dc := dcNext[j] + dh*sc.o[j]*(1-sc.tanhC[j]*sc.tanhC[j])
			di := dc * sc.g[j]
			dg := dc * sc.i[j]
			df := dc * sc.cPrev[j]
			dcNext[j] = dc * sc.f[j]

			dz[j] = di * sc.i[j] * (1 - sc.i[j])
			dz[H+j] = df * sc.f[j] * (1 - sc.f[j])
			dz[2*H+j] = dg * (1 - sc.g[j]*sc.g[j])
			dz[3*H+j] = do * sc.o[j] * (1 - sc.o[j])
		}

		dxh := make([]float64, cols)
		for r := 0; r < 4*H; r++ {
			if dz[r] == 0 {
				continue
			}
			floats.AddScaled(dW[r*cols:(r+1)*cols], dz[r], sc.xh)
			floats.AddScaled(dxh, dz[r], l.row(r))
			dB[r] += dz[r]
		}
		dXs[t] = dxh[:l.In]
		copy(dhNext, dxh[l.In:])
	}
	return dXs
}

// LSTMNetwork is LSTM(units, sequences) -> Dropout -> LSTM(units) -> Dropout -> Dense(1).
type LSTMNetwork struct {
	Layers  []*LSTMLayer `json:"layers"`
	DenseW  []float64    `json:"dense_w"`
	DenseB  float64      `json:"dense_b"`
	Dropout float64      `json:"dropout"`
}

func NewLSTMNetwork(units int, dropout float64, rng *rand.Rand) *LSTMNetwork {
	n := &LSTMNetwork{
		Layers:  []*LSTMLayer{newLSTMLayer(1, units, rng), newLSTMLayer(units, units, rng)},
		DenseW:  make([]float64, units),
		Dropout: dropout,
	}
	limit := math.Sqrt(6 / float64(units+1))
	for i := range n.DenseW {
		n.DenseW[i] = (rng.Float64()*2 - 1) * limit
	}
	return n
}

// Predict runs inference on one scaled window.
func (n *LSTMNetwork) Predict(window []float64) float64 {
	xs := make([][]float64, len(window))
	for t, v := range window {
		xs[t] = []float64{v}
	}
	h1, _ := n.Layers[0].forward(xs, false)
	h2, _ := n.Layers[1].forward(h1, false)
	return floats.Dot(n.DenseW, h2[len(h2)-1]) + n.DenseB
}

// grads mirrors the network parameters.
type grads struct {
	w      [2][]float64
	b      [2][]float64
	denseW []float64
	denseB float64
}

func (n *LSTMNetwork) newGrads() *grads {
	g := &grads{denseW: make([]float64, len(n.DenseW))}
	for k, l := range n.Layers {
		g.w[k] = make([]float64, len(l.W))
		g.b[k] = make([]float64, len(l.B))
	}
	return g
}

func (g *grads) zero() {
	for k := range g.w {
		for i := range g.w[k] {
			g.w[k][i] = 0
		}
		for i := range g.b[k] {
			g.b[k][i] = 0
		}
	}
	for i := range g.denseW {
		g.denseW[i] = 0
	}
	g.denseB = 0
}

func dropoutMask(size int, rate float64, rng *rand.Rand) []float64 {
	m := make([]float64, size)
	scale := 1 / (1 - rate)
	for i := range m {
		if rng.Float64() >= rate {
			m[i] = scale
		}
	}
	return m
}

// trainSample runs forward and backward for one (window, target) pair with
// dropout active, adds scaled gradients into g, and returns the squared error.
func (n *LSTMNetwork) trainSample(window []float64, target, gradScale float64, g *grads, rng *rand.Rand) float64 {
	T := len(window)
	units := n.Layers[0].Hidden
	xs := make([][]float64, T)
	for t, v := range window {
		xs[t] = []float64{v}
	}

	h1, c1 := n.Layers[0].forward(xs, true)
	masks1 := make([][]float64, T)
	d1 := make([][]float64, T)
	for t := range h1 {
		if n.Dropout > 0 {
			masks1[t] = dropoutMask(units, n.Dropout, rng)
			d1[t] = make([]float64, units)
			floats.MulTo(d1[t], h1[t], masks1[t])
		} else {
			d1[t] = h1[t]
		}
	}

	h2, c2 := n.Layers[1].forward(d1, true)
	last := h2[T-1]
	var mask2 []float64
	d2 := last
	if n.Dropout > 0 {
		mask2 = dropoutMask(units, n.Dropout, rng)
		d2 = make([]float64, units)
		floats.MulTo(d2, last, mask2)
	}

	pred := floats.Dot(n.DenseW, d2) + n.DenseB
	diff := pred - target
	dPred := 2 * diff * gradScale

	floats.AddScaled(g.denseW, dPred, d2)
	g.denseB += dPred

	dLast := make([]float64, units)
	floats.AddScaled(dLast, dPred, n.DenseW)
	if mask2 != nil {
		floats.Mul(dLast, mask2)
	}
	dH2 := make([][]float64, T)
	dH2[T-1] = dLast

	dD1 := n.Layers[1].backward(c2, dH2, g.w[1], g.b[1])
	if n.Dropout > 0 {
		for t := range dD1 {
			floats.Mul(dD1[t], masks1[t])
		}
	}
	n.Layers[0].backward(c1, dD1, g.w[0], g.b[0])

	return diff * diff
}

// adam keeps first and second moment estimates for every parameter slice.
type adam struct {
	lr, beta1, beta2, eps float64
	step                  int
	m, v                  map[string][]float64
}

func newAdam(lr float64) *adam {
	return &adam{lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-7, m: map[string][]float64{}, v: map[string][]float64{}}
}

func (a *adam) update(key string, params, grad []float64) {
	m, ok := a.m[key]
	if !ok {
		m = make([]float64, len(params))
		a.m[key] = m
		a.v[key] = make([]float64, len(params))
	}
	v := a.v[key]
	b1t := 1 - math.Pow(a.beta1, float64(a.step))
	b2t := 1 - math.Pow(a.beta2, float64(a.step))
	for i := range params {
		m[i] = a.beta1*m[i] + (1-a.beta1)*grad[i]
		v[i] = a.beta2*v[i] + (1-a.beta2)*grad[i]*grad[i]
		params[i] -= a.lr * (m[i] / b1t) / (math.Sqrt(v[i]/b2t) + a.eps)
	}
}

func (n *LSTMNetwork) apply(opt *adam, g *grads) {
	opt.step++
	for k, l := range n.Layers {
		opt.update(fmt.Sprintf("w%d", k), l.W, g.w[k])
		opt.update(fmt.Sprintf("b%d", k), l.B, g.b[k])
	}
	opt.update("dense_w", n.DenseW, g.denseW)
	db := []float64{n.DenseB}
	opt.update("dense_b", db, []float64{g.denseB})
	n.DenseB = db[0]
}

// Windows builds (window, next value) training pairs from a scaled series.
func Windows(series []float64, size int) ([][]float64, []float64) {
	var xs [][]float64
	var ys []float64
	for t := size; t < len(series); t++ {
		xs = append(xs, series[t-size:t])
		ys = append(ys, series[t])
	}
	return xs, ys
}

// TrainLSTM builds a fresh network and fits it on the (window, target) pairs
// with mini-batch Adam on mean squared error. It returns the network and the
// mean loss of the final epoch.
func TrainLSTM(xs [][]float64, ys []float64, cfg LSTMConfig) (*LSTMNetwork, float64, error) {
	if err := cfg.validate(); err != nil {
		return nil, 0, err
	}
	if len(xs) != len(ys) {
		return nil, 0, fmt.Errorf("have %d windows and %d targets", len(xs), len(ys))
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	net := NewLSTMNetwork(cfg.Units, cfg.Dropout, rng)
	if len(xs) == 0 {
		return net, 0, nil
	}

	opt := newAdam(cfg.LearningRate)
	g := net.newGrads()
	order := make([]int, len(xs))
	for i := range order {
		order[i] = i
	}

	var epochLoss float64
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		epochLoss = 0
		for start := 0; start < len(order); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			g.zero()
			scale := 1 / float64(end-start)
			for _, idx := range order[start:end] {
				epochLoss += net.trainSample(xs[idx], ys[idx], scale, g, rng)
			}
			net.apply(opt, g)
		}
		epochLoss /= float64(len(order))
		if math.IsNaN(epochLoss) || math.IsInf(epochLoss, 0) {
			return nil, 0, ErrBadWeights
		}
	}
	return net, epochLoss, nil
}

// ForecastLSTM predicts Horizon steps ahead, feeding every raw prediction back
// into the trailing window. Results are in price scale.
func ForecastLSTM(net *LSTMNetwork, scaler MinMaxScaler, window []float64) ([]float64, error) {
	if len(window) != LookBack {
		return nil, fmt.Errorf("%w: window has %d points, want %d", ErrTooShort, len(window), LookBack)
	}
	cur := append([]float64(nil), window...)
	out := make([]float64, Horizon)
	for i := 0; i < Horizon; i++ {
		p := net.Predict(cur)
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, ErrBadWeights
		}
		out[i] = scaler.Inverse(p)
		cur = append(cur[1:], p)
	}
	return out, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

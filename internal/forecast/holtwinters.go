// Package forecast implements additive Holt-Winters exponential smoothing for
// short monthly spending series: a level, a linear trend and a 12-month
// additive seasonal component, with smoothing weights estimated from the data.
package forecast

import (
	"fmt"
	"math"

	"github.com/FjeldMats/FinanceLog/internal/core"
)

// SeasonLength is the seasonal period in months.
const SeasonLength = 12

// zScore80 is the normal quantile for a two-sided 80% interval.
const zScore80 = 1.28

// Point is a single point forecast with its uncertainty band.
type Point struct {
	Value float64
	Lower float64
	Upper float64
}

// Result carries the forecast horizon plus the fitted smoothing weights and
// the in-sample residual spread, mostly for logging.
type Result struct {
	Points      []Point
	Alpha       float64
	Beta        float64
	Gamma       float64
	ResidualStd float64
}

// HoltWinters fits and forecasts seasonal spending series. The zero value is
// not usable; construct with New.
type HoltWinters struct {
	period    int
	optimizer Optimizer
}

// New returns an engine with the given optimizer. A nil optimizer falls back
// to the gonum Nelder-Mead implementation.
func New(opt Optimizer) *HoltWinters {
	if opt == nil {
		opt = NelderMead{}
	}
	return &HoltWinters{period: SeasonLength, optimizer: opt}
}

// Forecast fits the model on series and produces horizon steps ahead. The
// series must cover at least two full seasons; shorter input, optimizer
// failure or any non-finite intermediate surfaces core.ErrFitFailed.
func (hw *HoltWinters) Forecast(series []float64, horizon int) (*Result, error) {
	m := hw.period
	if len(series) < 2*m {
		return nil, fmt.Errorf("%w: need %d training points for a %d-month season, have %d",
			core.ErrFitFailed, 2*m, m, len(series))
	}
	if horizon < 1 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	for _, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value in training series", core.ErrFitFailed)
		}
	}

	objective := func(x []float64) float64 {
		a, b, g := clampWeight(x[0]), clampWeight(x[1]), clampWeight(x[2])
		_, sse := hw.smooth(series, a, b, g)
		if math.IsNaN(sse) || math.IsInf(sse, 0) {
			return math.MaxFloat64
		}
		// Steer the optimizer back into the unit box.
		return sse * (1 + boxPenalty(x))
	}

	x0 := []float64{0.3, 0.1, 0.1}
	x, err := hw.optimizer.Minimize(objective, x0)
	if err != nil {
		return nil, fmt.Errorf("%w: optimize smoothing weights: %v", core.ErrFitFailed, err)
	}

	alpha, beta, gamma := clampWeight(x[0]), clampWeight(x[1]), clampWeight(x[2])
	state, _ := hw.smooth(series, alpha, beta, gamma)
	if !state.finite() {
		return nil, fmt.Errorf("%w: smoothing diverged (alpha=%.3f beta=%.3f gamma=%.3f)",
			core.ErrFitFailed, alpha, beta, gamma)
	}

	std := stddev(state.residuals)
	n := len(series)
	points := make([]Point, horizon)
	for h := 1; h <= horizon; h++ {
		raw := state.level + float64(h)*state.trend + state.seasonal[(n-1+h)%m]
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			return nil, fmt.Errorf("%w: non-finite forecast at step %d", core.ErrFitFailed, h)
		}
		// Spending cannot go negative; clamp the estimate and the lower bound
		// so lower <= value <= upper always holds.
		value := math.Max(0, raw)
		lower := math.Max(0, raw-zScore80*std)
		upper := math.Max(value, raw+zScore80*std)
		if lower > value {
			lower = value
		}
		points[h-1] = Point{Value: value, Lower: lower, Upper: upper}
	}

	return &Result{
		Points:      points,
		Alpha:       alpha,
		Beta:        beta,
		Gamma:       gamma,
		ResidualStd: std,
	}, nil
}

type smoothState struct {
	level     float64
	trend     float64
	seasonal  []float64
	residuals []float64
}

func (s smoothState) finite() bool {
	if math.IsNaN(s.level) || math.IsInf(s.level, 0) || math.IsNaN(s.trend) || math.IsInf(s.trend, 0) {
		return false
	}
	for _, v := range s.seasonal {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// smooth runs one Holt-Winters pass. The first season initializes the state
// (detrended deviations for the seasonal indices, season-over-season steps
// for the trend), smoothing and residual collection start at the second.
func (hw *HoltWinters) smooth(y []float64, alpha, beta, gamma float64) (smoothState, float64) {
	m := hw.period
	n := len(y)

	var firstMean float64
	for i := 0; i < m; i++ {
		firstMean += y[i]
	}
	firstMean /= float64(m)

	var trend float64
	for i := 0; i < m; i++ {
		trend += (y[m+i] - y[i]) / float64(m)
	}
	trend /= float64(m)

	// Level at the end of the first season.
	level := firstMean + trend*float64(m-1)/2

	seasonal := make([]float64, m)
	for i := 0; i < m; i++ {
		seasonal[i] = y[i] - (firstMean + (float64(i)-float64(m-1)/2)*trend)
	}

	residuals := make([]float64, 0, n-m)
	var sse float64
	for t := m; t < n; t++ {
		idx := t % m
		fitted := level + trend + seasonal[idx]
		resid := y[t] - fitted
		residuals = append(residuals, resid)
		sse += resid * resid

		prevLevel := level
		level = alpha*(y[t]-seasonal[idx]) + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		seasonal[idx] = gamma*(y[t]-level) + (1-gamma)*seasonal[idx]
	}

	return smoothState{level: level, trend: trend, seasonal: seasonal, residuals: residuals}, sse
}

// clampWeight keeps a smoothing weight strictly inside (0, 1).
func clampWeight(v float64) float64 {
	const eps = 1e-4
	if v < eps {
		return eps
	}
	if v > 1-eps {
		return 1 - eps
	}
	return v
}

func boxPenalty(x []float64) float64 {
	var p float64
	for _, v := range x {
		if v < 0 {
			p += -v
		}
		if v > 1 {
			p += v - 1
		}
	}
	return p
}

func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, v := range xs {
		mean += v
	}
	mean /= float64(len(xs))

	var ss float64
	for _, v := range xs {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// Optimizer minimizes an objective over the smoothing weights. It is an
// interface so the numerical routine stays swappable; the engine only needs
// "give me the best x near x0".
type Optimizer interface {
	Minimize(objective func(x []float64) float64, x0 []float64) ([]float64, error)
}

// NelderMead is the default Optimizer, the derivative-free simplex search
// from gonum.
type NelderMead struct{}

func (NelderMead) Minimize(objective func(x []float64) float64, x0 []float64) ([]float64, error) {
	problem := optimize.Problem{Func: objective}

	result, err := optimize.Minimize(problem, x0, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("nelder-mead: %w", err)
	}
	if result == nil || len(result.X) != len(x0) {
		return nil, fmt.Errorf("nelder-mead: no solution returned")
	}
	return result.X, nil
}

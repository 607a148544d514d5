package engine

import (
	"errors"
	"fmt"

	"github.com/gyaneshwarpardhi/refgraph/internal/bonus"
	"github.com/gyaneshwarpardhi/refgraph/internal/formula"
)

// ErrInvalidFormula wraps adoption formulas that fail to compile.
var ErrInvalidFormula = errors.New("invalid adoption formula")

// Simulate runs one growth simulation on the shared simulator.
func (e *Engine) Simulate(p float64, days int) []int {
	e.simMu.Lock()
	defer e.simMu.Unlock()
	return e.sim.Simulate(p, days)
}

// DaysToTarget reports how many simulated days growth at p needs to reach target.
func (e *Engine) DaysToTarget(p float64, target int) (int, error) {
	e.simMu.Lock()
	defer e.simMu.Unlock()
	return e.sim.DaysToTarget(p, target)
}

// OptimizeRequest parameterises a bonus search. An empty Formula selects the
// configured adoption formula; a nil Eps selects the configured eps.
type OptimizeRequest struct {
	Days    int
	Target  int
	Formula string
	Eps     *int
}

// OptimizeBonus searches for the smallest bonus meeting req's target.
func (e *Engine) OptimizeBonus(req OptimizeRequest) (bonus.Result, error) {
	cfg := e.Config()
	src := req.Formula
	if src == "" {
		src = cfg.Optimizer.AdoptionFormula
	}
	adoption, err := formula.Adoption(src)
	if err != nil {
		return bonus.Result{}, fmt.Errorf("%w: %w", ErrInvalidFormula, err)
	}
	eps := cfg.Optimizer.Eps
	if req.Eps != nil {
		eps = *req.Eps
	}

	e.simMu.Lock()
	defer e.simMu.Unlock()
	return e.optimizer.Search(req.Days, req.Target, adoption, eps), nil
}

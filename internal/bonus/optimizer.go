// Package bonus searches for the smallest referral incentive that, under a
// caller-supplied adoption curve, drives simulated growth to a hiring target.
package bonus

import (
	"math"

	"github.com/gyaneshwarpardhi/refgraph/internal/growth"
	"github.com/gyaneshwarpardhi/refgraph/internal/metrics"
)

// AdoptionFunc maps a bonus amount to the daily probability that a referrer
// brings someone in. It must be non-decreasing in bonus for the search to be
// meaningful; outputs are clamped to [0, 1].
type AdoptionFunc func(bonus float64) float64

// Config bounds the search grid.
type Config struct {
	MaxBonus int // upper end of the search range
	Step     int // bonuses are multiples of Step
}

// DefaultConfig searches [0, 10000] in steps of 10.
func DefaultConfig() Config {
	return Config{MaxBonus: 10000, Step: 10}
}

// Probe records one evaluated bonus amount.
type Probe struct {
	Bonus       int     `json:"bonus"`
	Probability float64 `json:"probability"`
	Total       int     `json:"total"`
	Met         bool    `json:"met"`
}

// Result is the outcome of a search.
type Result struct {
	Bonus  int     `json:"bonus"`
	Found  bool    `json:"found"`
	Probes []Probe `json:"probes"`
}

// Optimizer runs bonus searches against a growth simulator.
type Optimizer struct {
	conf Config
	sim  *growth.Simulator
}

// New returns an Optimizer. Non-positive config values fall back to defaults.
func New(conf Config, sim *growth.Simulator) *Optimizer {
	def := DefaultConfig()
	if conf.Step <= 0 {
		conf.Step = def.Step
	}
	if conf.MaxBonus <= 0 {
		conf.MaxBonus = def.MaxBonus
	}
	return &Optimizer{conf: conf, sim: sim}
}

// MinBonusForTarget returns the smallest bonus found whose simulated total
// after days reaches target, and false if no probed bonus did.
func (o *Optimizer) MinBonusForTarget(days, target int, adoption AdoptionFunc, eps int) (int, bool) {
	r := o.Search(days, target, adoption, eps)
	return r.Bonus, r.Found
}

// Search binary-searches [0, MaxBonus] on multiples of Step. Each probe runs a
// fresh simulation at adoption(mid); a met target moves the upper bound below
// mid, a miss moves the lower bound above it. The search ends when the bounds
// cross or when the remaining interval is narrower than eps.
func (o *Optimizer) Search(days, target int, adoption AdoptionFunc, eps int) Result {
	step := o.conf.Step
	low, high := 0, o.conf.MaxBonus/step*step
	res := Result{Probes: []Probe{}}

	for low <= high {
		if high-low < eps {
			break
		}
		mid := (low + high) / 2 / step * step
		p := clamp(adoption(float64(mid)))
		run := o.sim.Simulate(p, days)
		total := 0
		if len(run) > 0 {
			total = run[len(run)-1]
		}
		met := total >= target
		res.Probes = append(res.Probes, Probe{Bonus: mid, Probability: p, Total: total, Met: met})

		if met {
			if !res.Found || mid < res.Bonus {
				res.Bonus, res.Found = mid, true
			}
			high = mid - step
		} else {
			low = mid + step
		}
	}

	outcome := "not_found"
	if res.Found {
		outcome = "found"
	}
	metrics.OptimizerSearches.WithLabelValues(outcome).Inc()
	metrics.OptimizerProbes.Observe(float64(len(res.Probes)))
	return res
}

func clamp(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}

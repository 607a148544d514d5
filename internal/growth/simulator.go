// Package growth simulates referral growth over a fixed pool of referrers, each
// able to bring in a limited number of people.
//
// Every day each referrer with capacity left makes one attempt that succeeds
// with probability p; a success consumes one unit of capacity. The pool is
// synthetic and independent of any ledger.
package growth

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/gyaneshwarpardhi/refgraph/internal/metrics"
)

// ErrUnreachable is returned by DaysToTarget when the target can never be met.
var ErrUnreachable = errors.New("target unreachable")

// Source supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Config shapes the capacity pool.
type Config struct {
	PoolSize int // number of synthetic referrers
	Capacity int // referrals each referrer may make
	MaxDays  int // DaysToTarget gives up after this many days
}

// DefaultConfig returns a pool of 100 referrers with capacity 10 each.
func DefaultConfig() Config {
	return Config{PoolSize: 100, Capacity: 10, MaxDays: 3650}
}

// Simulator runs growth simulations. It is not safe for concurrent use because
// it draws from a single Source.
type Simulator struct {
	conf Config
	src  Source
}

// New returns a Simulator drawing from src. A nil src selects a randomly
// seeded PCG generator.
func New(conf Config, src Source) *Simulator {
	if src == nil {
		src = NewSource(0)
	}
	def := DefaultConfig()
	if conf.PoolSize <= 0 {
		conf.PoolSize = def.PoolSize
	}
	if conf.Capacity <= 0 {
		conf.Capacity = def.Capacity
	}
	if conf.MaxDays <= 0 {
		conf.MaxDays = def.MaxDays
	}
	return &Simulator{conf: conf, src: src}
}

// NewSource returns a PCG-backed source. seed 0 picks a random seed.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) ^ rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Config returns the effective pool configuration.
func (s *Simulator) Config() Config { return s.conf }

// MaxReferrals is the most the pool can ever produce.
func (s *Simulator) MaxReferrals() int {
	return s.conf.PoolSize * s.conf.Capacity
}

// Simulate runs days steps on a fresh pool and returns the cumulative number
// of referrals after each day. p is clamped to [0, 1].
func (s *Simulator) Simulate(p float64, days int) []int {
	metrics.SimulationRuns.WithLabelValues("simulate").Inc()
	if days <= 0 {
		return []int{}
	}
	pl := newPool(s.conf.PoolSize, s.conf.Capacity)
	p = clampProb(p)
	out := make([]int, days)
	total := 0
	for d := 0; d < days; d++ {
		total += pl.step(p, s.src)
		out[d] = total
	}
	return out
}

// DaysToTarget advances a fresh pool one day at a time until the cumulative
// total reaches target and returns the number of days taken. It returns
// ErrUnreachable when the pool cannot produce target referrals, when p is 0,
// when the pool runs dry, or when MaxDays elapse first.
func (s *Simulator) DaysToTarget(p float64, target int) (int, error) {
	metrics.SimulationRuns.WithLabelValues("days_to_target").Inc()
	if target <= 0 {
		return 0, nil
	}
	p = clampProb(p)
	if target > s.MaxReferrals() || p == 0 {
		return 0, ErrUnreachable
	}
	pl := newPool(s.conf.PoolSize, s.conf.Capacity)
	total := 0
	for day := 1; day <= s.conf.MaxDays; day++ {
		total += pl.step(p, s.src)
		if total >= target {
			return day, nil
		}
		if pl.exhausted() {
			break
		}
	}
	return 0, ErrUnreachable
}

func clampProb(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

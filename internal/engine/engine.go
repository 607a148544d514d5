// Package engine owns the live referral state and serialises access to it.
//
// The ledger and its reach engine are single-writer structures; every call
// that touches them goes through the Engine mutex. Simulations use a separate
// lock so long optimizer runs do not block ledger reads. Monte-Carlo batches
// fan out over a bounded worker pool, one simulator per trial.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gyaneshwarpardhi/refgraph/internal/bonus"
	"github.com/gyaneshwarpardhi/refgraph/internal/centrality"
	"github.com/gyaneshwarpardhi/refgraph/internal/config"
	"github.com/gyaneshwarpardhi/refgraph/internal/event"
	"github.com/gyaneshwarpardhi/refgraph/internal/growth"
	"github.com/gyaneshwarpardhi/refgraph/internal/ledger"
	"github.com/gyaneshwarpardhi/refgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/refgraph/internal/reach"
)

// ErrUnknownKind is returned for an unsupported centrality measure.
var ErrUnknownKind = errors.New("unknown centrality kind")

// Centrality measures accepted by Engine.Centrality.
const (
	KindFlow        = "flow"
	KindBetweenness = "betweenness"
)

// ReachReport bundles every reach figure for one user.
type ReachReport struct {
	User       string      `json:"user"`
	Known      bool        `json:"known"`
	Count      reach.Count `json:"count"`
	Score      int         `json:"score"`
	Downstream []string    `json:"downstream"`
}

// Stats summarises the ledger.
type Stats struct {
	Users        int `json:"users"`
	Edges        int `json:"edges"`
	Roots        int `json:"roots"`
	MaxReferrals int `json:"max_referrals"`
	CachedReach  int `json:"cached_reach"`
}

// Engine is the process-wide facade over ledger, analytics and simulation.
type Engine struct {
	mu     sync.Mutex
	cfg    *config.ProgramConfig
	ledger *ledger.Ledger
	reach  *reach.Engine

	simMu     sync.Mutex
	sim       *growth.Simulator
	optimizer *bonus.Optimizer

	trials *workerPool[*trialWork]
}

// New builds the seed ledger from cfg and starts the trial worker pool.
// The pool stops when ctx is cancelled or Shutdown is called.
func New(ctx context.Context, cfg *config.ProgramConfig) (*Engine, error) {
	l, err := ledger.Build(cfg)
	if err != nil {
		return nil, err
	}
	e := &Engine{}
	e.install(cfg, l)
	e.trials = newWorkerPool(ctx, cfg.Engine.TrialWorkers, cfg.Engine.QueueDepth, runTrial)
	return e, nil
}

// Reload rebuilds the ledger from cfg and swaps it in. On error the current
// state is kept. Trial pool sizing is fixed at startup.
func (e *Engine) Reload(cfg *config.ProgramConfig) error {
	l, err := ledger.Build(cfg)
	if err != nil {
		return fmt.Errorf("rebuild ledger: %w", err)
	}
	e.install(cfg, l)
	return nil
}

func (e *Engine) install(cfg *config.ProgramConfig, l *ledger.Ledger) {
	sim := growth.New(simConfig(cfg), growth.NewSource(cfg.Simulation.Seed))
	opt := bonus.New(bonus.Config{MaxBonus: cfg.Optimizer.MaxBonus, Step: cfg.Optimizer.Step}, sim)

	e.mu.Lock()
	e.cfg = cfg
	e.ledger = l
	e.reach = reach.New(l)
	e.observeLocked()
	e.mu.Unlock()

	e.simMu.Lock()
	e.sim = sim
	e.optimizer = opt
	e.simMu.Unlock()
}

func simConfig(cfg *config.ProgramConfig) growth.Config {
	return growth.Config{
		PoolSize: cfg.Simulation.PoolSize,
		Capacity: cfg.Simulation.Capacity,
		MaxDays:  cfg.Simulation.MaxDays,
	}
}

// Config returns the config the current state was built from.
func (e *Engine) Config() *config.ProgramConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// AddUser registers key and reports whether it was new.
func (e *Engine) AddUser(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	created := e.ledger.AddUser(key)
	e.observeLocked()
	return created
}

// AddReferral records referrer -> candidate. Rejections carry a ledger
// sentinel error; see ledger.Reason.
func (e *Engine) AddReferral(referrer, candidate string) (event.Referral, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, err := e.ledger.AddReferral(referrer, candidate)
	if err != nil {
		metrics.ReferralsRejected.WithLabelValues(ledger.Reason(err)).Inc()
	} else {
		metrics.ReferralsRecorded.Inc()
	}
	e.observeLocked()
	return rec, err
}

func (e *Engine) observeLocked() {
	metrics.LedgerUsers.Set(float64(e.ledger.UserCount()))
	metrics.LedgerEdges.Set(float64(e.ledger.EdgeCount()))
}

// Referrals returns key's direct referrals in the order they were made.
func (e *Engine) Referrals(key string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Referrals(key)
}

// Referrer returns who referred key, if anyone.
func (e *Engine) Referrer(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Referrer(key)
}

// Reach returns the counts, score and downstream set of key.
func (e *Engine) Reach(key string) ReachReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	full := e.reach.ComputeFullReach(key)
	return ReachReport{
		User:       key,
		Known:      e.ledger.Has(key),
		Count:      e.reach.TotalReferralCount(key),
		Score:      e.reach.ReachScore(key),
		Downstream: append(make([]string, 0, len(full)), full...),
	}
}

// TopReferrers ranks users by reach score.
func (e *Engine) TopReferrers(k int) []reach.Ranked {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reach.TopReferrersByReach(k)
}

// Coverage picks up to k users that together reach the most of the network.
func (e *Engine) Coverage(k int) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reach.UniqueReachExpansion(k)
}

// Centrality ranks users by the named measure. An empty kind means flow.
func (e *Engine) Centrality(kind string) ([]centrality.Score, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch kind {
	case "", KindFlow:
		return centrality.FlowCentrality(e.ledger), nil
	case KindBetweenness:
		return centrality.Betweenness(e.ledger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Stats summarises the current ledger.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Users:        e.ledger.UserCount(),
		Edges:        e.ledger.EdgeCount(),
		Roots:        len(e.ledger.Roots()),
		MaxReferrals: e.ledger.MaxReferrals(),
		CachedReach:  e.reach.CacheSize(),
	}
}

// Shutdown drains the trial pool.
func (e *Engine) Shutdown() {
	e.trials.Drain()
}

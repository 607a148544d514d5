package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gyaneshwarpardhi/refgraph/internal/growth"
	"github.com/gyaneshwarpardhi/refgraph/internal/metrics"
)

// ErrQueueFull is returned when a trial batch does not fit in the queue.
var ErrQueueFull = errors.New("trial queue full")

// TrialBatch is the aggregate of one Monte-Carlo run.
type TrialBatch struct {
	ID         string         `json:"id"`
	Trials     int            `json:"trials"`
	P          float64        `json:"p"`
	Days       int            `json:"days"`
	Seed       uint64         `json:"seed"`
	DurationMs int64          `json:"duration_ms"`
	Summary    growth.Summary `json:"summary"`
}

type trialWork struct {
	ctx     context.Context
	conf    growth.Config
	seed    uint64
	p       float64
	days    int
	resultC chan []int
}

// runTrial simulates one run with its own source. Cancelled work is skipped.
func runTrial(_ context.Context, w *trialWork) {
	if w.ctx.Err() != nil {
		return
	}
	sim := growth.New(w.conf, growth.NewSource(w.seed))
	w.resultC <- sim.Simulate(w.p, w.days)
}

// RunTrials runs trials independent simulations of growth at p over days on
// the worker pool and summarises them. Trial i uses seed base+i+1, where base
// is the configured simulation seed, so a fixed seed gives a reproducible
// batch. The whole batch is bounded by engine.trial_timeout_ms.
func (e *Engine) RunTrials(ctx context.Context, p float64, days, trials int) (*TrialBatch, error) {
	if trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", trials)
	}
	cfg := e.Config()
	if trials > e.trials.QueueCap() {
		return nil, fmt.Errorf("%w: %d trials exceed queue depth %d", ErrQueueFull, trials, e.trials.QueueCap())
	}
	base := cfg.Simulation.Seed
	if base == 0 {
		base = rand.Uint64()
	}

	timeout := time.Duration(cfg.Engine.TrialTimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	runs := make([][]int, trials)
	g, gctx := errgroup.WithContext(ctx)
	for i := range trials {
		w := &trialWork{
			ctx:     gctx,
			conf:    simConfig(cfg),
			seed:    base + uint64(i) + 1,
			p:       p,
			days:    days,
			resultC: make(chan []int, 1),
		}
		if !e.trials.Submit(w) {
			cancel()
			_ = g.Wait()
			return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.trials.QueueCap())
		}
		g.Go(func() error {
			select {
			case r := <-w.resultC:
				runs[i] = r
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	metrics.TrialQueueUtilization.Set(e.QueueUtilization())
	metrics.SimulationRuns.WithLabelValues("trial_batch").Inc()

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("trial batch: %w", err)
	}
	return &TrialBatch{
		ID:         uuid.NewString(),
		Trials:     trials,
		P:          p,
		Days:       days,
		Seed:       base,
		DurationMs: time.Since(start).Milliseconds(),
		Summary:    growth.Summarize(runs),
	}, nil
}

// QueueUtilization returns queue used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.trials.QueueCap() == 0 {
		return 0
	}
	return float64(e.trials.QueueLen()) / float64(e.trials.QueueCap())
}

package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/refgraph/internal/config"
	"github.com/gyaneshwarpardhi/refgraph/internal/engine"
	"github.com/gyaneshwarpardhi/refgraph/internal/ledger"
)

func sampleConfig() *config.ProgramConfig {
	cfg := config.Default()
	cfg.Simulation.Seed = 42
	cfg.Users = []string{"Z"}
	cfg.Referrals = []config.SeedReferral{
		{Referrer: "A", Candidate: "B"},
		{Referrer: "B", Candidate: "C"},
		{Referrer: "B", Candidate: "D"},
		{Referrer: "A", Candidate: "E"},
	}
	return cfg
}

func newEngine(t *testing.T, cfg *config.ProgramConfig) *engine.Engine {
	t.Helper()
	e, err := engine.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(e.Shutdown)
	return e
}

func TestNew_SeedsLedger(t *testing.T) {
	e := newEngine(t, sampleConfig())
	st := e.Stats()
	assert.Equal(t, 6, st.Users)
	assert.Equal(t, 4, st.Edges)
	assert.Equal(t, 2, st.Roots, "A and Z")
	assert.Equal(t, []string{"B", "E"}, e.Referrals("A"))
}

func TestNew_RejectsBadSeed(t *testing.T) {
	cfg := sampleConfig()
	cfg.Referrals = append(cfg.Referrals, config.SeedReferral{Referrer: "D", Candidate: "A"})
	_, err := engine.New(context.Background(), cfg)
	assert.ErrorIs(t, err, ledger.ErrCycleDetected)
}

func TestAddReferral(t *testing.T) {
	e := newEngine(t, sampleConfig())

	rec, err := e.AddReferral("E", "F")
	require.NoError(t, err)
	assert.Equal(t, "E", rec.Referrer)
	assert.Equal(t, "F", rec.Candidate)
	assert.NotEmpty(t, rec.ID)

	_, err = e.AddReferral("F", "A")
	assert.ErrorIs(t, err, ledger.ErrCycleDetected)
	_, err = e.AddReferral("Z", "C")
	assert.ErrorIs(t, err, ledger.ErrAlreadyReferred)

	ref, ok := e.Referrer("F")
	assert.True(t, ok)
	assert.Equal(t, "E", ref)
}

func TestReach_SeesNewReferrals(t *testing.T) {
	e := newEngine(t, sampleConfig())

	r := e.Reach("A")
	assert.True(t, r.Known)
	assert.Equal(t, 4, r.Count.Total)
	assert.Equal(t, 6, r.Score)

	_, err := e.AddReferral("D", "G")
	require.NoError(t, err)
	r = e.Reach("A")
	assert.Equal(t, 5, r.Count.Total)
	assert.Contains(t, r.Downstream, "G")

	unknown := e.Reach("nobody")
	assert.False(t, unknown.Known)
	assert.Empty(t, unknown.Downstream)
}

func TestAnalytics(t *testing.T) {
	e := newEngine(t, sampleConfig())

	top := e.TopReferrers(2)
	require.Len(t, top, 2)
	assert.Equal(t, "A", top[0].User)
	assert.Equal(t, "B", top[1].User)

	assert.Equal(t, []string{"A"}, e.Coverage(3))

	flow, err := e.Centrality("")
	require.NoError(t, err)
	assert.Equal(t, "B", flow[0].User)

	btw, err := e.Centrality(engine.KindBetweenness)
	require.NoError(t, err)
	assert.Equal(t, "B", btw[0].User)

	_, err = e.Centrality("pagerank")
	assert.ErrorIs(t, err, engine.ErrUnknownKind)
}

func TestReload(t *testing.T) {
	e := newEngine(t, sampleConfig())

	next := sampleConfig()
	next.Referrals = next.Referrals[:1]
	require.NoError(t, e.Reload(next))
	assert.Equal(t, 1, e.Stats().Edges)
	assert.Same(t, next, e.Config())

	bad := sampleConfig()
	bad.Referrals = append(bad.Referrals, config.SeedReferral{Referrer: "C", Candidate: "A"})
	assert.Error(t, e.Reload(bad))
	assert.Equal(t, 1, e.Stats().Edges, "failed reload keeps state")
}

func TestSimulationAndDays(t *testing.T) {
	e := newEngine(t, sampleConfig())

	run := e.Simulate(1, 12)
	require.Len(t, run, 12)
	assert.Equal(t, 1000, run[11])

	days, err := e.DaysToTarget(1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 10, days)
}

func TestOptimizeBonus(t *testing.T) {
	e := newEngine(t, sampleConfig())

	res, err := e.OptimizeBonus(engine.OptimizeRequest{
		Days:    5,
		Target:  400,
		Formula: "bonus >= 3000",
	})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, 3000, res.Bonus)

	coarse := 1000
	res2, err := e.OptimizeBonus(engine.OptimizeRequest{Days: 5, Target: 400, Formula: "bonus >= 3000", Eps: &coarse})
	require.NoError(t, err)
	assert.Less(t, len(res2.Probes), len(res.Probes))

	_, err = e.OptimizeBonus(engine.OptimizeRequest{Days: 5, Target: 400, Formula: "bonus +"})
	assert.ErrorIs(t, err, engine.ErrInvalidFormula)
}

func TestOptimizeBonus_DefaultFormula(t *testing.T) {
	e := newEngine(t, sampleConfig())
	res, err := e.OptimizeBonus(engine.OptimizeRequest{Days: 60, Target: 500})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Greater(t, res.Bonus, 0)
	assert.LessOrEqual(t, res.Bonus, 10000)
}

func TestRunTrials(t *testing.T) {
	e := newEngine(t, sampleConfig())

	a, err := e.RunTrials(context.Background(), 0.2, 15, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, a.Trials)
	assert.Equal(t, 20, a.Summary.Runs)
	assert.Len(t, a.Summary.MeanCurve, 15)
	assert.NotEmpty(t, a.ID)

	b, err := e.RunTrials(context.Background(), 0.2, 15, 20)
	require.NoError(t, err)
	assert.Equal(t, a.Summary, b.Summary, "fixed seed reproduces the batch")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRunTrials_Errors(t *testing.T) {
	cfg := sampleConfig()
	cfg.Engine.QueueDepth = 4
	e := newEngine(t, cfg)

	_, err := e.RunTrials(context.Background(), 0.5, 5, 0)
	assert.Error(t, err)

	_, err = e.RunTrials(context.Background(), 0.5, 5, 5)
	assert.ErrorIs(t, err, engine.ErrQueueFull)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.RunTrials(ctx, 0.5, 5, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

package growth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/refgraph/internal/growth"
)

// fixedSource returns the same draw forever.
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func seeded(seed uint64) *growth.Simulator {
	return growth.New(growth.DefaultConfig(), growth.NewSource(seed))
}

func TestSimulate_CertainGrowth(t *testing.T) {
	sim := growth.New(growth.DefaultConfig(), fixedSource(0))
	got := sim.Simulate(1, 15)

	require.Len(t, got, 15)
	for d := 0; d < 10; d++ {
		assert.Equal(t, 100*(d+1), got[d], "day %d", d)
	}
	for d := 10; d < 15; d++ {
		assert.Equal(t, 1000, got[d], "capacity exhausted by day 10")
	}
}

func TestSimulate_ZeroProbability(t *testing.T) {
	got := seeded(1).Simulate(0, 30)
	require.Len(t, got, 30)
	for _, v := range got {
		assert.Zero(t, v)
	}
}

func TestSimulate_NonDecreasingAndBounded(t *testing.T) {
	sim := seeded(99)
	for _, p := range []float64{0.05, 0.3, 0.7, 1} {
		got := sim.Simulate(p, 40)
		require.Len(t, got, 40)
		for d := 1; d < len(got); d++ {
			assert.GreaterOrEqual(t, got[d], got[d-1], "p=%v day %d", p, d)
		}
		assert.LessOrEqual(t, got[len(got)-1], sim.MaxReferrals())
		assert.LessOrEqual(t, got[0], 100, "at most one referral per referrer per day")
	}
}

func TestSimulate_EdgeInputs(t *testing.T) {
	sim := seeded(3)
	assert.Empty(t, sim.Simulate(0.5, 0))
	assert.Empty(t, sim.Simulate(0.5, -4))
	assert.Equal(t, sim.Simulate(0, 5), sim.Simulate(-1, 5), "negative p clamps to 0")

	certain := growth.New(growth.DefaultConfig(), fixedSource(0.999))
	assert.Equal(t, 100, certain.Simulate(7, 1)[0], "p above 1 clamps to 1")
}

func TestSimulate_ResetsBetweenCalls(t *testing.T) {
	sim := growth.New(growth.DefaultConfig(), fixedSource(0))
	first := sim.Simulate(1, 12)
	second := sim.Simulate(1, 12)
	assert.Equal(t, first, second)
}

func TestSimulate_Deterministic(t *testing.T) {
	assert.Equal(t, seeded(42).Simulate(0.2, 20), seeded(42).Simulate(0.2, 20))
}

func TestSimulate_HigherProbabilityDominates(t *testing.T) {
	lowSim, highSim := seeded(5), seeded(6)
	var low, high [][]int
	for i := 0; i < 50; i++ {
		low = append(low, lowSim.Simulate(0.05, 20))
		high = append(high, highSim.Simulate(0.2, 20))
	}
	assert.Greater(t, growth.Summarize(high).MeanFinal, growth.Summarize(low).MeanFinal)
}

func TestSimulate_CustomPool(t *testing.T) {
	sim := growth.New(growth.Config{PoolSize: 3, Capacity: 2}, fixedSource(0))
	assert.Equal(t, []int{3, 6, 6}, sim.Simulate(1, 3))
	assert.Equal(t, 6, sim.MaxReferrals())
}

func TestDaysToTarget(t *testing.T) {
	sim := growth.New(growth.DefaultConfig(), fixedSource(0))

	days, err := sim.DaysToTarget(1, 250)
	require.NoError(t, err)
	assert.Equal(t, 3, days)

	days, err = sim.DaysToTarget(1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 10, days)

	days, err = sim.DaysToTarget(0.5, 0)
	require.NoError(t, err)
	assert.Zero(t, days)
}

func TestDaysToTarget_Unreachable(t *testing.T) {
	sim := seeded(8)

	_, err := sim.DaysToTarget(1, 1001)
	assert.ErrorIs(t, err, growth.ErrUnreachable, "beyond pool capacity")

	_, err = sim.DaysToTarget(0, 10)
	assert.ErrorIs(t, err, growth.ErrUnreachable, "zero probability")

	slow := growth.New(growth.Config{PoolSize: 1, Capacity: 10, MaxDays: 3}, fixedSource(0))
	_, err = slow.DaysToTarget(1, 5)
	assert.ErrorIs(t, err, growth.ErrUnreachable, "max days elapsed")
}

func TestDaysToTarget_Stochastic(t *testing.T) {
	sim := seeded(21)
	days, err := sim.DaysToTarget(0.3, 500)
	require.NoError(t, err)
	assert.Greater(t, days, 5, "needs more than the certain-growth minimum")
}

func TestSummarize(t *testing.T) {
	s := growth.Summarize([][]int{{1, 2, 4}, {0, 1, 2}})
	assert.Equal(t, 2, s.Runs)
	assert.Equal(t, 3.0, s.MeanFinal)
	assert.Equal(t, 2, s.MinFinal)
	assert.Equal(t, 4, s.MaxFinal)
	assert.Equal(t, []float64{0.5, 1.5, 3}, s.MeanCurve)

	empty := growth.Summarize(nil)
	assert.Zero(t, empty.Runs)
	assert.Empty(t, empty.MeanCurve)
}

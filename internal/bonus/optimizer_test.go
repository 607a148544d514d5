package bonus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/refgraph/internal/bonus"
	"github.com/gyaneshwarpardhi/refgraph/internal/formula"
	"github.com/gyaneshwarpardhi/refgraph/internal/growth"
)

// alwaysSucceed makes every Bernoulli draw with p > 0 succeed.
type alwaysSucceed struct{}

func (alwaysSucceed) Float64() float64 { return 0 }

func optimizer() *bonus.Optimizer {
	return bonus.New(bonus.DefaultConfig(), growth.New(growth.DefaultConfig(), alwaysSucceed{}))
}

// threshold adopts with certainty once bonus reaches at.
func threshold(at float64) bonus.AdoptionFunc {
	return func(b float64) float64 {
		if b >= at {
			return 1
		}
		return 0
	}
}

func TestMinBonusForTarget_FindsThreshold(t *testing.T) {
	cases := []struct {
		name string
		at   float64
	}{
		{"zero", 0},
		{"low", 10},
		{"middle", 3000},
		{"off grid rounds up", 4321},
		{"ceiling", 10000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := optimizer().MinBonusForTarget(5, 400, threshold(tc.at), 0)
			require.True(t, ok)
			want := int(tc.at+9) / 10 * 10
			assert.Equal(t, want, got)
		})
	}
}

func TestMinBonusForTarget_NotFound(t *testing.T) {
	o := optimizer()

	_, ok := o.MinBonusForTarget(5, 400, threshold(20000), 0)
	assert.False(t, ok, "threshold above ceiling")

	_, ok = o.MinBonusForTarget(5, 600, threshold(0), 0)
	assert.False(t, ok, "5 days cap growth at 500")
}

func TestMinBonusForTarget_Monotone(t *testing.T) {
	o := optimizer()
	// Draws always succeed, so any positive probability behaves like 1.
	steps := bonus.AdoptionFunc(func(b float64) float64 {
		switch {
		case b >= 6000:
			return 1
		case b >= 2000:
			return 0.5
		default:
			return 0
		}
	})
	low, ok := o.MinBonusForTarget(3, 200, steps, 0)
	require.True(t, ok)
	high, ok := o.MinBonusForTarget(3, 300, steps, 0)
	require.True(t, ok)
	assert.LessOrEqual(t, low, high)

	fewerDays, ok := o.MinBonusForTarget(2, 200, steps, 0)
	require.True(t, ok)
	assert.GreaterOrEqual(t, fewerDays, low)
}

func TestMinBonusForTarget_FedBackMeetsTarget(t *testing.T) {
	fn, err := formula.Adoption("bonus / 5000")
	require.NoError(t, err)

	sim := growth.New(growth.DefaultConfig(), growth.NewSource(17))
	o := bonus.New(bonus.DefaultConfig(), sim)
	got, ok := o.MinBonusForTarget(30, 300, fn, 0)
	require.True(t, ok)

	assert.Greater(t, fn(float64(got)), 0.0)
	assert.Zero(t, got%10)
}

func TestSearch_EpsStopsEarly(t *testing.T) {
	o := optimizer()
	exact := o.Search(5, 400, threshold(3000), 0)
	coarse := o.Search(5, 400, threshold(3000), 1000)

	require.True(t, exact.Found)
	assert.Less(t, len(coarse.Probes), len(exact.Probes))
	if coarse.Found {
		assert.GreaterOrEqual(t, coarse.Bonus, exact.Bonus)
		assert.LessOrEqual(t, coarse.Bonus-exact.Bonus, 1000)
	}
}

func TestSearch_ProbeTrace(t *testing.T) {
	res := optimizer().Search(5, 400, threshold(3000), 0)
	require.NotEmpty(t, res.Probes)
	assert.Equal(t, 5000, res.Probes[0].Bonus, "first probe is the midpoint")
	assert.True(t, res.Probes[0].Met)
	for _, p := range res.Probes {
		assert.Equal(t, p.Bonus >= 3000, p.Met, "bonus %d", p.Bonus)
		assert.Zero(t, p.Bonus%10)
	}
}

func TestSearch_ClampsAdoption(t *testing.T) {
	res := optimizer().Search(5, 400, func(float64) float64 { return 7 }, 0)
	require.True(t, res.Found)
	assert.Equal(t, 0, res.Bonus)
	for _, p := range res.Probes {
		assert.Equal(t, 1.0, p.Probability)
	}
}

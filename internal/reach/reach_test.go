package reach_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/refgraph/internal/ledger"
	"github.com/gyaneshwarpardhi/refgraph/internal/reach"
)

func newLedger(t *testing.T, edges ...[2]string) (*ledger.Ledger, *reach.Engine) {
	t.Helper()
	l := ledger.New(0)
	e := reach.New(l)
	for _, ed := range edges {
		_, err := l.AddReferral(ed[0], ed[1])
		require.NoError(t, err, "AddReferral(%s, %s)", ed[0], ed[1])
	}
	return l, e
}

func sample(t *testing.T) (*ledger.Ledger, *reach.Engine) {
	return newLedger(t, [2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"B", "D"}, [2]string{"A", "E"})
}

func TestTotalReferralCount(t *testing.T) {
	_, e := sample(t)

	assert.Equal(t, reach.Count{Direct: 2, Indirect: 2, Total: 4}, e.TotalReferralCount("A"))
	assert.Equal(t, reach.Count{Direct: 2, Indirect: 0, Total: 2}, e.TotalReferralCount("B"))
	assert.Equal(t, reach.Count{}, e.TotalReferralCount("C"))
	assert.Equal(t, reach.Count{}, e.TotalReferralCount("missing"))
}

func TestComputeFullReach(t *testing.T) {
	l, e := sample(t)

	got := e.ComputeFullReach("A")
	assert.Equal(t, []string{"B", "E", "C", "D"}, got, "breadth-first order")
	assert.NotContains(t, got, "A")
	assert.Empty(t, e.ComputeFullReach("missing"))

	// Every reported key must be a strict descendant.
	for _, k := range got {
		cur, found := k, false
		for {
			p, ok := l.Referrer(cur)
			if !ok {
				break
			}
			if p == "A" {
				found = true
				break
			}
			cur = p
		}
		assert.True(t, found, "%s is not below A", k)
	}
}

func TestTotalMatchesFullReach(t *testing.T) {
	l, e := newLedger(t,
		[2]string{"r", "a"}, [2]string{"r", "b"}, [2]string{"a", "c"},
		[2]string{"c", "d"}, [2]string{"d", "e"}, [2]string{"b", "f"},
	)
	for _, u := range l.Users() {
		c := e.TotalReferralCount(u)
		assert.Equal(t, c.Direct+c.Indirect, c.Total, u)
		assert.Len(t, e.ComputeFullReach(u), c.Total, u)
	}
}

func TestCacheInvalidatedOnReferral(t *testing.T) {
	l, e := sample(t)

	require.Len(t, e.ComputeFullReach("A"), 4)
	require.Equal(t, 1, e.CacheSize())

	_, err := l.AddReferral("C", "F")
	require.NoError(t, err)
	assert.Equal(t, 0, e.CacheSize(), "cache should be cleared by a new edge")
	assert.Len(t, e.ComputeFullReach("A"), 5)

	// Rejected referrals leave the cache alone.
	_, err = l.AddReferral("F", "A")
	require.ErrorIs(t, err, ledger.ErrCycleDetected)
	assert.Equal(t, 1, e.CacheSize())
}

func TestReachScore(t *testing.T) {
	_, e := sample(t)
	assert.Equal(t, 6, e.ReachScore("A"))
	assert.Equal(t, 4, e.ReachScore("B"))
	assert.Equal(t, 0, e.ReachScore("C"))
	assert.Equal(t, 0, e.ReachScore("missing"))
}

func TestTopReferrersByReach(t *testing.T) {
	l, e := sample(t)
	_, err := l.AddReferral("E", "F")
	require.NoError(t, err)

	top := e.TopReferrersByReach(3)
	require.Len(t, top, 3)
	assert.Equal(t, "A", top[0].User)
	assert.Equal(t, 2*2+3, top[0].Score)
	assert.Equal(t, reach.Count{Direct: 2, Indirect: 3, Total: 5}, top[0].Details)
	assert.Equal(t, "B", top[1].User)
	assert.Equal(t, "E", top[2].User)

	assert.Empty(t, e.TopReferrersByReach(0))
	assert.Len(t, e.TopReferrersByReach(100), l.UserCount())
}

func TestTopReferrersByReach_TiesKeepLedgerOrder(t *testing.T) {
	_, e := newLedger(t, [2]string{"x", "x1"}, [2]string{"y", "y1"}, [2]string{"z", "z1"})
	top := e.TopReferrersByReach(3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"x", "y", "z"}, []string{top[0].User, top[1].User, top[2].User})
}

func TestUniqueReachExpansion(t *testing.T) {
	_, e := newLedger(t,
		[2]string{"root", "a"}, [2]string{"root", "b"},
		[2]string{"a", "a1"}, [2]string{"a", "a2"}, [2]string{"a", "a3"},
		[2]string{"b", "b1"},
		[2]string{"solo", "s1"}, [2]string{"solo", "s2"},
	)

	// root covers 6; afterwards solo adds 2 while a and b add nothing new.
	assert.Equal(t, []string{"root", "solo"}, e.UniqueReachExpansion(5))
	assert.Equal(t, []string{"root"}, e.UniqueReachExpansion(1))
	assert.Empty(t, e.UniqueReachExpansion(0))
}

func TestUniqueReachExpansion_GreedyGainsNonIncreasing(t *testing.T) {
	l := ledger.New(0)
	e := reach.New(l)
	for i := 0; i < 30; i++ {
		parent := fmt.Sprintf("n%d", i/3)
		l.AddReferral(parent, fmt.Sprintf("n%d", i+1))
	}
	for i := 0; i < 4; i++ {
		l.AddReferral(fmt.Sprintf("island%d", i), fmt.Sprintf("leaf%d", i))
	}

	picked := e.UniqueReachExpansion(10)
	require.NotEmpty(t, picked)
	assert.LessOrEqual(t, len(picked), 10)

	covered := map[string]struct{}{}
	prev := -1
	for _, u := range picked {
		gain := 0
		for _, r := range e.ComputeFullReach(u) {
			if _, ok := covered[r]; !ok {
				gain++
				covered[r] = struct{}{}
			}
		}
		assert.Positive(t, gain, u)
		if prev >= 0 {
			assert.LessOrEqual(t, gain, prev, "gain for %s should not exceed previous pick", u)
		}
		prev = gain
	}
}

func TestUniqueReachExpansion_EmptyLedger(t *testing.T) {
	e := reach.New(ledger.New(0))
	assert.Empty(t, e.UniqueReachExpansion(3))
}

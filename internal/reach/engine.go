// Package reach answers influence questions over the referral forest: how many
// people a user brought in directly and transitively, which users cover the
// most of the network, and who ranks highest by weighted reach.
package reach

import (
	"github.com/gyaneshwarpardhi/refgraph/internal/event"
	"github.com/gyaneshwarpardhi/refgraph/internal/ledger"
	"github.com/gyaneshwarpardhi/refgraph/internal/metrics"
)

// Count splits a user's reach into direct and indirect referrals.
type Count struct {
	Direct   int `json:"direct"`
	Indirect int `json:"indirect"`
	Total    int `json:"total"`
}

// Engine computes reach over a ledger and caches full downstream sets.
// The cache is cleared whenever the ledger accepts a referral.
type Engine struct {
	ledger *ledger.Ledger
	cache  map[string][]string
}

// New creates an Engine bound to l and subscribes it to l's referrals.
func New(l *ledger.Ledger) *Engine {
	e := &Engine{ledger: l, cache: make(map[string][]string)}
	l.OnReferral(func(event.Referral) { e.Invalidate() })
	return e
}

// Invalidate drops every cached reach set.
func (e *Engine) Invalidate() {
	clear(e.cache)
}

// CacheSize returns the number of cached reach sets.
func (e *Engine) CacheSize() int {
	return len(e.cache)
}

// ComputeFullReach returns every strict descendant of key in breadth-first
// order. Unknown keys yield an empty slice. The returned slice is shared with
// the cache and must not be modified.
func (e *Engine) ComputeFullReach(key string) []string {
	if r, ok := e.cache[key]; ok {
		metrics.ReachCacheLookups.WithLabelValues("hit").Inc()
		return r
	}
	metrics.ReachCacheLookups.WithLabelValues("miss").Inc()

	start, ok := e.ledger.Lookup(key)
	if !ok {
		return []string{}
	}
	out := make([]string, 0)
	seen := map[int]struct{}{start: {}}
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range e.ledger.Children(cur) {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, e.ledger.Key(c))
			queue = append(queue, c)
		}
	}
	e.cache[key] = out
	return out
}

// TotalReferralCount returns direct, indirect and total reach for key.
// Unknown keys yield all zeros.
func (e *Engine) TotalReferralCount(key string) Count {
	i, ok := e.ledger.Lookup(key)
	if !ok {
		return Count{}
	}
	direct := len(e.ledger.Children(i))
	total := len(e.ComputeFullReach(key))
	return Count{Direct: direct, Indirect: total - direct, Total: total}
}

// ReachScore weights direct referrals twice as heavily as indirect ones.
func (e *Engine) ReachScore(key string) int {
	c := e.TotalReferralCount(key)
	return 2*c.Direct + c.Indirect
}

// Package ledger holds the referral forest: who referred whom, in what order,
// and how much referral capacity each user has left.
//
// Nodes live in a dense arena addressed by integer index; a separate key index
// maps user keys to arena slots. The ledger is not safe for concurrent use;
// callers that share one across goroutines must serialise access.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/refgraph/internal/event"
)

// DefaultMaxReferrals is the per-referrer capacity when none is configured.
const DefaultMaxReferrals = 10

// Ledger owns the referral adjacency and enforces the forest invariants:
// every user has at most one referrer and no user is their own ancestor.
type Ledger struct {
	nodes        []node
	index        map[string]int
	edges        int
	maxReferrals int
	listeners    []func(event.Referral)
	now          func() time.Time
}

// New allocates an empty Ledger. maxReferrals <= 0 selects DefaultMaxReferrals.
func New(maxReferrals int) *Ledger {
	if maxReferrals <= 0 {
		maxReferrals = DefaultMaxReferrals
	}
	return &Ledger{
		index:        make(map[string]int),
		maxReferrals: maxReferrals,
		now:          time.Now,
	}
}

// OnReferral registers fn to be called after every accepted referral.
func (l *Ledger) OnReferral(fn func(event.Referral)) {
	l.listeners = append(l.listeners, fn)
}

// AddUser inserts an empty node for key. It is a no-op for known or empty keys
// and reports whether a node was created.
func (l *Ledger) AddUser(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := l.index[key]; ok {
		return false
	}
	l.ensure(key)
	return true
}

func (l *Ledger) ensure(key string) int {
	if i, ok := l.index[key]; ok {
		return i
	}
	i := len(l.nodes)
	l.nodes = append(l.nodes, newNode(key))
	l.index[key] = i
	return i
}

// AddReferral records that referrer recruited candidate.
//
// Checks run in order: empty keys, self referral, candidate already referred,
// cycle, referrer capacity. Both users are created before the checks that
// follow the empty-key test, so a rejected referral may still introduce new
// (edge-less) users.
func (l *Ledger) AddReferral(referrer, candidate string) (event.Referral, error) {
	if referrer == "" || candidate == "" {
		return event.Referral{}, fmt.Errorf("%w: referrer=%q candidate=%q", ErrInvalidInput, referrer, candidate)
	}
	ri := l.ensure(referrer)
	ci := l.ensure(candidate)

	if ri == ci {
		return event.Referral{}, fmt.Errorf("%w: %s", ErrSelfReferral, referrer)
	}
	if c := &l.nodes[ci]; c.hasReferrer() {
		return event.Referral{}, fmt.Errorf("%w: %s was referred by %s", ErrAlreadyReferred, candidate, l.nodes[c.referrer].key)
	}
	if l.reaches(ci, ri) {
		return event.Referral{}, fmt.Errorf("%w: %s is an ancestor of %s", ErrCycleDetected, candidate, referrer)
	}
	if len(l.nodes[ri].referrals) >= l.maxReferrals {
		return event.Referral{}, fmt.Errorf("%w: %s has %d referrals", ErrCapacityExceeded, referrer, l.maxReferrals)
	}

	r := &l.nodes[ri]
	r.referrals = append(r.referrals, ci)
	l.nodes[ci].referrer = ri
	l.edges++

	rec := event.Referral{
		ID:         uuid.NewString(),
		Referrer:   referrer,
		Candidate:  candidate,
		Position:   len(r.referrals) - 1,
		RecordedAt: l.now(),
	}
	for _, fn := range l.listeners {
		fn(rec)
	}
	return rec, nil
}

// reaches reports whether to is reachable from from along outgoing edges.
// The visited set lives only for this call.
func (l *Ledger) reaches(from, to int) bool {
	visited := make(map[int]struct{})
	stack := []int{from}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if i == to {
			return true
		}
		if _, seen := visited[i]; seen {
			continue
		}
		visited[i] = struct{}{}
		stack = append(stack, l.nodes[i].referrals...)
	}
	return false
}

// Referrals returns the keys key referred, in insertion order.
// Unknown keys yield an empty slice.
func (l *Ledger) Referrals(key string) []string {
	i, ok := l.index[key]
	if !ok {
		return []string{}
	}
	out := make([]string, len(l.nodes[i].referrals))
	for j, c := range l.nodes[i].referrals {
		out[j] = l.nodes[c].key
	}
	return out
}

// Referrer returns who referred key, if anyone.
func (l *Ledger) Referrer(key string) (string, bool) {
	i, ok := l.index[key]
	if !ok || !l.nodes[i].hasReferrer() {
		return "", false
	}
	return l.nodes[l.nodes[i].referrer].key, true
}

// Depth returns the number of referral hops between key and its root.
// Unknown keys and roots have depth 0.
func (l *Ledger) Depth(key string) int {
	i, ok := l.index[key]
	if !ok {
		return 0
	}
	d := 0
	for l.nodes[i].hasReferrer() {
		i = l.nodes[i].referrer
		d++
	}
	return d
}

// Has reports whether key is a known user.
func (l *Ledger) Has(key string) bool {
	_, ok := l.index[key]
	return ok
}

// Users returns every known key in insertion order.
func (l *Ledger) Users() []string {
	out := make([]string, len(l.nodes))
	for i := range l.nodes {
		out[i] = l.nodes[i].key
	}
	return out
}

// Roots returns the users nobody referred, in insertion order.
func (l *Ledger) Roots() []string {
	out := []string{}
	for i := range l.nodes {
		if !l.nodes[i].hasReferrer() {
			out = append(out, l.nodes[i].key)
		}
	}
	return out
}

// UserCount returns the number of known users.
func (l *Ledger) UserCount() int { return len(l.nodes) }

// EdgeCount returns the number of accepted referrals.
func (l *Ledger) EdgeCount() int { return l.edges }

// MaxReferrals returns the per-referrer capacity.
func (l *Ledger) MaxReferrals() int { return l.maxReferrals }

// -----------------------------------------------------------------------
// Index-level access for the analytics engines
// -----------------------------------------------------------------------

// Lookup returns the arena index of key.
func (l *Ledger) Lookup(key string) (int, bool) {
	i, ok := l.index[key]
	return i, ok
}

// Key returns the user key stored at arena index i.
func (l *Ledger) Key(i int) string {
	return l.nodes[i].key
}

// Children returns the arena indices referred by node i. The slice is owned by
// the ledger and must not be modified.
func (l *Ledger) Children(i int) []int {
	return l.nodes[i].referrals
}

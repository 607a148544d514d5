// Package centrality ranks users by how often they sit on shortest referral
// paths between other users.
package centrality

import (
	"sort"

	"github.com/gyaneshwarpardhi/refgraph/internal/ledger"
)

// unreachable marks a pair with no directed path.
const unreachable = -1

// Score is one user's centrality value.
type Score struct {
	User  string  `json:"user"`
	Score float64 `json:"score"`
}

// Distances holds unweighted shortest-path lengths along referral edges,
// indexed by ledger arena position. dist[s][t] is unreachable when no path
// leads from s to t.
type Distances [][]int

// AllPairs runs a breadth-first search from every user.
func AllPairs(l *ledger.Ledger) Distances {
	n := l.UserCount()
	dist := make(Distances, n)
	for s := 0; s < n; s++ {
		dist[s] = bfs(l, s, n)
	}
	return dist
}

func bfs(l *ledger.Ledger, s, n int) []int {
	d := make([]int, n)
	for i := range d {
		d[i] = unreachable
	}
	d[s] = 0
	queue := []int{s}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range l.Children(v) {
			if d[w] == unreachable {
				d[w] = d[v] + 1
				queue = append(queue, w)
			}
		}
	}
	return d
}

// FlowCentrality counts, for every user v, the ordered pairs (s, t) of other
// users for which v lies on a shortest s→t path:
// dist(s,t) == dist(s,v) + dist(v,t), all three finite.
//
// The result is sorted by score, highest first; equal scores keep ledger order.
func FlowCentrality(l *ledger.Ledger) []Score {
	dist := AllPairs(l)
	n := len(dist)
	scores := make([]float64, n)
	for s := 0; s < n; s++ {
		for t := 0; t < n; t++ {
			if s == t || dist[s][t] == unreachable {
				continue
			}
			for v := 0; v < n; v++ {
				if v == s || v == t {
					continue
				}
				if dist[s][v] == unreachable || dist[v][t] == unreachable {
					continue
				}
				if dist[s][t] == dist[s][v]+dist[v][t] {
					scores[v]++
				}
			}
		}
	}
	return ranked(l, scores)
}

func ranked(l *ledger.Ledger, scores []float64) []Score {
	out := make([]Score, len(scores))
	for i, s := range scores {
		out[i] = Score{User: l.Key(i), Score: s}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

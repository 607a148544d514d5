package centrality

import "github.com/gyaneshwarpardhi/refgraph/internal/ledger"

// Betweenness computes normalized betweenness centrality with Brandes'
// algorithm over referral edges. Scores are divided by (n-1)(n-2), the
// directed-graph normalization factor, so they fall in [0, 1].
//
// In a forest every pair has at most one shortest path, so the ranking agrees
// with FlowCentrality; the scores differ only by the normalization.
func Betweenness(l *ledger.Ledger) []Score {
	n := l.UserCount()
	cb := make([]float64, n)
	if n < 3 {
		return ranked(l, cb)
	}
	for s := 0; s < n; s++ {
		stack, sigma, pred := brandesBFS(l, s, n)
		brandesAccumulate(s, stack, sigma, pred, cb)
	}
	norm := float64((n - 1) * (n - 2))
	for i := range cb {
		cb[i] /= norm
	}
	return ranked(l, cb)
}

// brandesBFS returns the visit stack, shortest-path counts and predecessor
// lists for source s.
func brandesBFS(l *ledger.Ledger, s, n int) ([]int, []float64, [][]int) {
	stack := make([]int, 0, n)
	pred := make([][]int, n)
	sigma := make([]float64, n)
	dist := make([]int, n)
	for i := range dist {
		dist[i] = unreachable
	}
	sigma[s] = 1
	dist[s] = 0

	queue := []int{s}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)
		for _, w := range l.Children(v) {
			if dist[w] == unreachable {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				pred[w] = append(pred[w], v)
			}
		}
	}
	return stack, sigma, pred
}

// brandesAccumulate back-propagates pair dependencies from source s into cb.
func brandesAccumulate(s int, stack []int, sigma []float64, pred [][]int, cb []float64) {
	delta := make([]float64, len(sigma))
	for i := len(stack) - 1; i >= 0; i-- {
		w := stack[i]
		for _, v := range pred[w] {
			delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
		}
		if w != s {
			cb[w] += delta[w]
		}
	}
}

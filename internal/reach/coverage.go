package reach

// UniqueReachExpansion greedily picks up to k users whose combined reach covers
// the most distinct people. Each round selects the user adding the most keys
// not yet covered; ties go to the user seen first in ledger order. Selection
// stops early once no user adds anything new.
func (e *Engine) UniqueReachExpansion(k int) []string {
	selected := make([]string, 0, max(k, 0))
	covered := make(map[string]struct{})
	users := e.ledger.Users()

	for round := 0; round < k; round++ {
		best, bestGain := "", 0
		for _, u := range users {
			if g := e.gain(u, covered); g > bestGain {
				best, bestGain = u, g
			}
		}
		if bestGain == 0 {
			break
		}
		selected = append(selected, best)
		for _, r := range e.ComputeFullReach(best) {
			covered[r] = struct{}{}
		}
	}
	return selected
}

// gain counts the keys in u's reach that are not yet covered.
func (e *Engine) gain(u string, covered map[string]struct{}) int {
	n := 0
	for _, r := range e.ComputeFullReach(u) {
		if _, ok := covered[r]; !ok {
			n++
		}
	}
	return n
}

package reach

import "sort"

// Ranked is one entry of a reach leaderboard.
type Ranked struct {
	User    string `json:"user"`
	Score   int    `json:"score"`
	Details Count  `json:"details"`
}

// TopReferrersByReach ranks every user by ReachScore, highest first, and
// returns the first k. Equal scores keep ledger order.
func (e *Engine) TopReferrersByReach(k int) []Ranked {
	if k <= 0 {
		return []Ranked{}
	}
	users := e.ledger.Users()
	all := make([]Ranked, len(users))
	for i, u := range users {
		c := e.TotalReferralCount(u)
		all[i] = Ranked{User: u, Score: 2*c.Direct + c.Indirect, Details: c}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if k < len(all) {
		all = all[:k]
	}
	return all
}

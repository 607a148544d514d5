package growth

// pool tracks the remaining capacity of each synthetic referrer.
type pool struct {
	remaining []int
	active    int // referrers with capacity left
}

func newPool(size, capacity int) *pool {
	r := make([]int, size)
	for i := range r {
		r[i] = capacity
	}
	return &pool{remaining: r, active: size}
}

// step runs one day: each referrer with capacity makes one Bernoulli(p)
// attempt, and a success consumes one unit. Returns the day's referrals.
func (p *pool) step(prob float64, src Source) int {
	made := 0
	for i, c := range p.remaining {
		if c == 0 {
			continue
		}
		if src.Float64() < prob {
			p.remaining[i]--
			made++
			if p.remaining[i] == 0 {
				p.active--
			}
		}
	}
	return made
}

func (p *pool) exhausted() bool {
	return p.active == 0
}

package growth

// Summary aggregates repeated simulation runs of equal length.
type Summary struct {
	Runs      int       `json:"runs"`
	MeanFinal float64   `json:"mean_final"`
	MinFinal  int       `json:"min_final"`
	MaxFinal  int       `json:"max_final"`
	MeanCurve []float64 `json:"mean_curve"`
}

// Summarize averages runs day by day. Runs shorter than the first one are
// averaged over the days they cover.
func Summarize(runs [][]int) Summary {
	if len(runs) == 0 || len(runs[0]) == 0 {
		return Summary{Runs: len(runs), MeanCurve: []float64{}}
	}
	days := len(runs[0])
	sums := make([]float64, days)
	counts := make([]int, days)
	s := Summary{Runs: len(runs), MinFinal: runs[0][days-1], MaxFinal: runs[0][days-1]}
	finals := 0.0
	for _, r := range runs {
		for d := 0; d < days && d < len(r); d++ {
			sums[d] += float64(r[d])
			counts[d]++
		}
		if len(r) == 0 {
			continue
		}
		f := r[len(r)-1]
		finals += float64(f)
		s.MinFinal = min(s.MinFinal, f)
		s.MaxFinal = max(s.MaxFinal, f)
	}
	s.MeanFinal = finals / float64(len(runs))
	s.MeanCurve = make([]float64, days)
	for d := range sums {
		if counts[d] > 0 {
			s.MeanCurve[d] = sums[d] / float64(counts[d])
		}
	}
	return s
}

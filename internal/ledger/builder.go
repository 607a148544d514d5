package ledger

import (
	"fmt"

	"github.com/gyaneshwarpardhi/refgraph/internal/config"
)

// Build constructs a Ledger from the seed users and referrals of a validated
// ProgramConfig. Seed referrals are applied in file order; the first rejected
// one aborts the build.
func Build(cfg *config.ProgramConfig) (*Ledger, error) {
	l := New(cfg.Ledger.MaxReferrals)
	for _, u := range cfg.Users {
		l.AddUser(u)
	}
	for i, r := range cfg.Referrals {
		if _, err := l.AddReferral(r.Referrer, r.Candidate); err != nil {
			return nil, fmt.Errorf("referrals[%d] %s -> %s: %w", i, r.Referrer, r.Candidate, err)
		}
	}
	return l, nil
}

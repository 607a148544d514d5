package config

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/refgraph/internal/formula"
)

var logLevels = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}

// Validate checks the config for:
//   - Required fields and positive limits
//   - A parseable adoption formula
//   - Seed referrals with empty keys, self referrals, or a candidate seeded twice
//
// Cycles among seed referrals are left to ledger.Build, which applies the
// same checks as a live referral.
func Validate(cfg *ProgramConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	if _, ok := logLevels[strings.ToLower(cfg.LogLevel)]; !ok {
		errs = append(errs, fmt.Sprintf("log_level: unknown level %q", cfg.LogLevel))
	}
	if f := strings.ToLower(cfg.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Sprintf("log_format: want text or json, got %q", cfg.LogFormat))
	}
	positive := []struct {
		name string
		v    int
	}{
		{"ledger.max_referrals", cfg.Ledger.MaxReferrals},
		{"simulation.pool_size", cfg.Simulation.PoolSize},
		{"simulation.capacity", cfg.Simulation.Capacity},
		{"simulation.max_days", cfg.Simulation.MaxDays},
		{"optimizer.max_bonus", cfg.Optimizer.MaxBonus},
		{"optimizer.step", cfg.Optimizer.Step},
		{"engine.trial_workers", cfg.Engine.TrialWorkers},
		{"engine.queue_depth", cfg.Engine.QueueDepth},
		{"engine.trial_timeout_ms", cfg.Engine.TrialTimeoutMs},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got %d", p.name, p.v))
		}
	}
	if cfg.Optimizer.Eps < 0 {
		errs = append(errs, fmt.Sprintf("optimizer.eps must not be negative, got %d", cfg.Optimizer.Eps))
	}
	if cfg.Optimizer.Step > 0 && cfg.Optimizer.MaxBonus%cfg.Optimizer.Step != 0 {
		errs = append(errs, fmt.Sprintf("optimizer.max_bonus %d is not a multiple of step %d", cfg.Optimizer.MaxBonus, cfg.Optimizer.Step))
	}
	if _, err := formula.Adoption(cfg.Optimizer.AdoptionFormula); err != nil {
		errs = append(errs, fmt.Sprintf("optimizer.adoption_formula %q: %s", cfg.Optimizer.AdoptionFormula, err))
	}

	for i, u := range cfg.Users {
		if u == "" {
			errs = append(errs, fmt.Sprintf("users[%d]: key is required", i))
		}
	}
	seen := make(map[string]int) // candidate → first referral index
	for i, r := range cfg.Referrals {
		loc := fmt.Sprintf("referrals[%d]", i)
		if r.Referrer == "" || r.Candidate == "" {
			errs = append(errs, fmt.Sprintf("%s: referrer and candidate are required", loc))
			continue
		}
		if r.Referrer == r.Candidate {
			errs = append(errs, fmt.Sprintf("%s: %s cannot refer themselves", loc, r.Referrer))
		}
		if prev, ok := seen[r.Candidate]; ok {
			errs = append(errs, fmt.Sprintf("%s: candidate %q already referred at referrals[%d]", loc, r.Candidate, prev))
		} else {
			seen[r.Candidate] = i
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

package config

// ProgramConfig is the top-level YAML structure.
type ProgramConfig struct {
	Version    string         `yaml:"version"`
	LogLevel   string         `yaml:"log_level"`
	LogFormat  string         `yaml:"log_format"` // text | json
	Ledger     LedgerConf     `yaml:"ledger"`
	Simulation SimulationConf `yaml:"simulation"`
	Optimizer  OptimizerConf  `yaml:"optimizer"`
	Engine     EngineConf     `yaml:"engine"`
	Users      []string       `yaml:"users"`     // seed users without referrals
	Referrals  []SeedReferral `yaml:"referrals"` // applied in order at startup and on reload
}

// LedgerConf bounds the referral graph.
type LedgerConf struct {
	MaxReferrals int `yaml:"max_referrals"`
}

// SimulationConf shapes the synthetic capacity pool used by the growth simulator.
type SimulationConf struct {
	PoolSize int    `yaml:"pool_size"`
	Capacity int    `yaml:"capacity"`
	MaxDays  int    `yaml:"max_days"`
	Seed     uint64 `yaml:"seed"` // 0 = random per process
}

// OptimizerConf configures the bonus binary search.
type OptimizerConf struct {
	MaxBonus        int    `yaml:"max_bonus"`
	Step            int    `yaml:"step"`
	Eps             int    `yaml:"eps"`
	AdoptionFormula string `yaml:"adoption_formula"`
}

// EngineConf holds tunable concurrency settings for Monte-Carlo trials.
type EngineConf struct {
	TrialWorkers   int `yaml:"trial_workers"`
	QueueDepth     int `yaml:"queue_depth"`
	TrialTimeoutMs int `yaml:"trial_timeout_ms"`
}

// SeedReferral is one referrer -> candidate edge loaded from the config file.
type SeedReferral struct {
	Referrer  string `yaml:"referrer"`
	Candidate string `yaml:"candidate"`
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader reads a YAML config file and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *ProgramConfig
	onChange []func(*ProgramConfig)
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.path }

// Config returns the current (latest) configuration.
func (l *Loader) Config() *ProgramConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*ProgramConfig)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the config on file changes.
// Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						slog.Warn("config reload failed, keeping previous config", "path", l.path, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "path", l.path, "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the config file.
func (l *Loader) Reload() (*ProgramConfig, error) {
	cfg, err := Load(l.path)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*ProgramConfig), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

// Load reads and parses the file at path and applies defaults.
func Load(path string) (*ProgramConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML bytes and applies defaults.
func Parse(data []byte) (*ProgramConfig, error) {
	var cfg ProgramConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config with every default applied and no seed data.
func Default() *ProgramConfig {
	cfg := &ProgramConfig{Version: "v1"}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued settings.
func ApplyDefaults(cfg *ProgramConfig) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Ledger.MaxReferrals == 0 {
		cfg.Ledger.MaxReferrals = 10
	}
	if cfg.Simulation.PoolSize == 0 {
		cfg.Simulation.PoolSize = 100
	}
	if cfg.Simulation.Capacity == 0 {
		cfg.Simulation.Capacity = 10
	}
	if cfg.Simulation.MaxDays == 0 {
		cfg.Simulation.MaxDays = 3650
	}
	if cfg.Optimizer.MaxBonus == 0 {
		cfg.Optimizer.MaxBonus = 10000
	}
	if cfg.Optimizer.Step == 0 {
		cfg.Optimizer.Step = 10
	}
	if cfg.Optimizer.AdoptionFormula == "" {
		cfg.Optimizer.AdoptionFormula = "min(1, bonus / 5000)"
	}
	if cfg.Engine.TrialWorkers == 0 {
		cfg.Engine.TrialWorkers = 8
	}
	if cfg.Engine.QueueDepth == 0 {
		cfg.Engine.QueueDepth = 256
	}
	if cfg.Engine.TrialTimeoutMs == 0 {
		cfg.Engine.TrialTimeoutMs = 5000
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gyaneshwarpardhi/refgraph/internal/api"
	"github.com/gyaneshwarpardhi/refgraph/internal/config"
	"github.com/gyaneshwarpardhi/refgraph/internal/engine"
	"github.com/gyaneshwarpardhi/refgraph/internal/logging"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPath := flag.String("config", "configs/program.yaml", "Path to program YAML config")
	logLevel := flag.String("log-level", "", "Override log_level from the config")
	flag.Parse()

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	slog.SetDefault(logging.NewLogger(level, cfg.LogFormat, os.Stdout))

	// ── Engine ────────────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := engine.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to build ledger", "err", err)
		os.Exit(1)
	}
	st := eng.Stats()
	slog.Info("ledger built", "users", st.Users, "edges", st.Edges, "max_referrals", st.MaxReferrals)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.ProgramConfig) {
		if err := config.Validate(newCfg); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		if err := eng.Reload(newCfg); err != nil {
			slog.Warn("hot-reload skipped: ledger rebuild failed", "err", err)
			return
		}
		st := eng.Stats()
		slog.Info("ledger hot-reloaded", "users", st.Users, "edges", st.Edges)
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.New(eng, loader.Path()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down…")
		shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	code := 0
	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
		code = 1
	}
	stop()
	eng.Shutdown()
	slog.Info("goodbye")
	if code != 0 {
		os.Exit(code)
	}
}

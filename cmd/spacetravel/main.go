// Command spacetravel loads planets, vehicles and people from record files
// and simulates every voyage hour by hour until all vehicles have arrived or
// been lost.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/talgya/space-travel/internal/api"
	"github.com/talgya/space-travel/internal/config"
	"github.com/talgya/space-travel/internal/console"
	"github.com/talgya/space-travel/internal/engine"
	"github.com/talgya/space-travel/internal/loader"
	"github.com/talgya/space-travel/internal/persistence"
	"github.com/talgya/space-travel/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// The table owns stdout.
	slog.SetDefault(cfg.Logging.NewLogger(os.Stderr))

	// ── Records ───────────────────────────────────────────────────────
	recs, err := loader.Load(cfg.PlanetsFile, cfg.VehiclesFile, cfg.PeopleFile)
	if err != nil {
		slog.Error("failed to load records", "error", err)
		os.Exit(1)
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim, err := engine.NewSimulation(recs.Planets, recs.Vehicles, recs.People)
	if err != nil {
		slog.Error("failed to place people", "error", err)
		os.Exit(1)
	}

	eng := engine.NewEngine(sim)
	eng.Interval = cfg.TickInterval
	eng.MaxTicks = cfg.MaxTicks

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer := report.NewRenderer(os.Stdout)
	publishers := []func(engine.Snapshot){
		func(s engine.Snapshot) {
			if err := renderer.Render(s); err != nil {
				slog.Error("render failed", "tick", s.Tick, "error", err)
			}
		},
	}

	// ── Journal ───────────────────────────────────────────────────────
	var journal *persistence.DB
	if cfg.JournalPath != "" {
		journal, err = openJournal(cfg.JournalPath)
		if err != nil {
			slog.Error("failed to open journal", "error", err)
			os.Exit(1)
		}
		defer journal.Close()

		if _, err := journal.BeginRun(sim); err != nil {
			slog.Error("failed to start journal run", "error", err)
			os.Exit(1)
		}
		publishers = append(publishers, func(s engine.Snapshot) {
			if err := journal.RecordSnapshot(s); err != nil {
				slog.Error("journal write failed", "tick", s.Tick, "error", err)
			}
		})
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.APIPort > 0 {
		if cfg.AdminKey == "" {
			slog.Warn("SPACETRAVEL_ADMIN_KEY not set, admin POST endpoints will be disabled")
		}
		var history api.Journal
		if journal != nil {
			history = journal
		}
		apiServer := api.NewServer(eng, history, cfg.APIPort, cfg.AdminKey, cfg.CORSOrigins)
		apiServer.Publish(sim.Snapshot(nil))
		apiServer.Start(ctx)
		publishers = append(publishers, apiServer.Publish)
	}

	eng.OnTick = func(s engine.Snapshot) {
		for _, publish := range publishers {
			publish(s)
		}
	}

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	if cfg.Interactive {
		eng.Pause()
		fmt.Fprintln(os.Stderr, console.Help)
		go func() {
			if err := console.Run(ctx, os.Stdin, eng, cancel); err != nil {
				slog.Error("console read failed", "error", err)
			}
		}()
	}

	res := eng.Run(ctx)

	if err := renderer.Finish(res); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
	if journal != nil {
		if err := journal.FinishRun(res); err != nil {
			slog.Error("journal finish failed", "error", err)
		}
	}
}

// openJournal creates the journal's directory if needed and opens it.
func openJournal(path string) (*persistence.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	return persistence.Open(path)
}

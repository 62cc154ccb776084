// Command scengen writes a procedurally generated set of planet, vehicle
// and person record files.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/talgya/space-travel/internal/config"
	"github.com/talgya/space-travel/internal/scenario"
)

func main() {
	configPath := flag.String("config", "", "YAML generator config (defaults when empty)")
	outDir := flag.String("out", ".", "directory for the record files")
	seed := flag.Int64("seed", 0, "noise seed, overrides the config (0 = keep)")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	if _, err := config.ParseLevel(*logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(config.Logging{Level: *logLevel, Format: "text"}.NewLogger(os.Stderr))

	cfg := scenario.DefaultGenConfig()
	if *configPath != "" {
		var err error
		cfg, err = scenario.LoadConfig(*configPath)
		if err != nil {
			slog.Error("failed to load generator config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	sc, err := scenario.Generate(cfg)
	if err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}
	if err := sc.Write(*outDir); err != nil {
		slog.Error("failed to write records", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	slog.Info("scenario written",
		"dir", *outDir,
		"seed", sc.Seed,
		"planets", len(sc.Planets),
		"vehicles", len(sc.Vehicles),
		"people", len(sc.People),
	)
}

// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting of the simulator binary.
type Config struct {
	PlanetsFile  string `env:"SPACETRAVEL_PLANETS_FILE" envDefault:"planets.txt"`
	VehiclesFile string `env:"SPACETRAVEL_VEHICLES_FILE" envDefault:"vehicles.txt"`
	PeopleFile   string `env:"SPACETRAVEL_PEOPLE_FILE" envDefault:"people.txt"`

	MaxTicks     uint64        `env:"SPACETRAVEL_MAX_TICKS" envDefault:"0"`       // 0 = no cap
	TickInterval time.Duration `env:"SPACETRAVEL_TICK_INTERVAL" envDefault:"0s"`  // 0 = as fast as possible
	Interactive  bool          `env:"SPACETRAVEL_INTERACTIVE" envDefault:"false"` // Read console commands from stdin

	JournalPath string   `env:"SPACETRAVEL_JOURNAL_PATH"`             // Empty = no journal
	APIPort     int      `env:"SPACETRAVEL_API_PORT" envDefault:"0"` // 0 = no API
	AdminKey    string   `env:"SPACETRAVEL_ADMIN_KEY"`
	CORSOrigins []string `env:"SPACETRAVEL_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`

	Logging Logging
}

// Logging selects the slog handler.
type Logging struct {
	Level  string `env:"SPACETRAVEL_LOG_LEVEL" envDefault:"info"`
	Format string `env:"SPACETRAVEL_LOG_FORMAT" envDefault:"text"` // "text" or "json"
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.PlanetsFile == "" || c.VehiclesFile == "" || c.PeopleFile == "":
		return errors.New("all three record files must be set")
	case c.TickInterval < 0:
		return fmt.Errorf("tick interval must not be negative, got %s", c.TickInterval)
	case c.APIPort < 0 || c.APIPort > 65535:
		return fmt.Errorf("api port out of range: %d", c.APIPort)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewLogger builds the handler the settings describe.
func (l Logging) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(l.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(l.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

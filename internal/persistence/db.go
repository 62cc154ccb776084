// Package persistence provides the SQLite run journal.
// A journal records what happened during each run for later inspection;
// it is never read back to resume a simulation.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/space-travel/internal/engine"
)

// DB wraps a SQLite connection for the run journal.
type DB struct {
	conn  *sqlx.DB
	runID string // Run currently being recorded, empty before BeginRun
}

// Run is one row of the runs table.
type Run struct {
	ID         string `json:"id" db:"id"`
	StartedAt  string `json:"started_at" db:"started_at"`
	FinishedAt string `json:"finished_at,omitempty" db:"finished_at"`
	Reason     string `json:"reason,omitempty" db:"reason"`
	Ticks      uint64 `json:"ticks" db:"ticks"`
	Planets    int    `json:"planets" db:"planets"`
	Vehicles   int    `json:"vehicles" db:"vehicles"`
	People     int    `json:"people" db:"people"`
}

// TickRecord is the per-tick headcount summary.
type TickRecord struct {
	Tick      uint64 `json:"tick" db:"tick"`
	OnPlanets int    `json:"on_planets" db:"on_planets"`
	Aboard    int    `json:"aboard" db:"aboard"`
	Deaths    int    `json:"deaths" db:"deaths"`
	Waiting   int    `json:"waiting" db:"waiting"`
	InTransit int    `json:"in_transit" db:"in_transit"`
	Arrived   int    `json:"arrived" db:"arrived"`
	Destroyed int    `json:"destroyed" db:"destroyed"`
}

// VehicleRecord is a vehicle row as of some tick.
type VehicleRecord struct {
	Tick       uint64 `json:"tick" db:"tick"`
	Name       string `json:"name" db:"name"`
	Status     string `json:"status" db:"status"`
	Remaining  int    `json:"remaining" db:"remaining"`
	Passengers int    `json:"passengers" db:"passengers"`
}

// Open opens or creates a SQLite journal at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// RunID returns the ID of the run being recorded.
func (db *DB) RunID() string {
	return db.runID
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		ticks INTEGER NOT NULL DEFAULT 0,
		planets INTEGER NOT NULL,
		vehicles INTEGER NOT NULL,
		people INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ticks (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		on_planets INTEGER NOT NULL,
		aboard INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		waiting INTEGER NOT NULL,
		in_transit INTEGER NOT NULL,
		arrived INTEGER NOT NULL,
		destroyed INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE TABLE IF NOT EXISTS planet_states (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		population INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vehicle_states (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		remaining INTEGER NOT NULL,
		passengers INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_planet_states_run ON planet_states(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_vehicle_states_run ON vehicle_states(run_id, name, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun starts a new run record and makes it current. Events already
// produced during construction (dangling references) are journaled at tick 0.
func (db *DB) BeginRun(sim *engine.Simulation) (string, error) {
	id := uuid.New().String()
	_, err := db.conn.Exec(
		`INSERT INTO runs (id, started_at, planets, vehicles, people) VALUES (?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), len(sim.Planets), len(sim.Vehicles), sim.Stats.Initial,
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	db.runID = id

	if err := db.SaveEvents(sim.Events); err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	slog.Info("journal run started", "run", id)
	return id, nil
}

// RecordSnapshot appends one tick to the current run.
func (db *DB) RecordSnapshot(s engine.Snapshot) error {
	if db.runID == "" {
		return fmt.Errorf("record snapshot: no run started")
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	st := s.Stats
	if _, err := tx.Exec(`INSERT INTO ticks
		(run_id, tick, on_planets, aboard, deaths, waiting, in_transit, arrived, destroyed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		db.runID, s.Tick, st.OnPlanets, st.Aboard, st.Deaths, st.Waiting, st.InTransit, st.Arrived, st.Destroyed,
	); err != nil {
		return fmt.Errorf("save tick: %w", err)
	}

	planetStmt, err := tx.Preparex(`INSERT INTO planet_states
		(run_id, tick, name, date, population) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer planetStmt.Close()
	for _, p := range s.Planets {
		if _, err := planetStmt.Exec(db.runID, s.Tick, p.Name, p.Date, p.Population); err != nil {
			return fmt.Errorf("save planet %s: %w", p.Name, err)
		}
	}

	vehicleStmt, err := tx.Preparex(`INSERT INTO vehicle_states
		(run_id, tick, name, status, remaining, passengers) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer vehicleStmt.Close()
	for _, v := range s.Vehicles {
		if _, err := vehicleStmt.Exec(db.runID, s.Tick, v.Name, v.Status, v.Remaining, v.Passengers); err != nil {
			return fmt.Errorf("save vehicle %s: %w", v.Name, err)
		}
	}

	for _, e := range s.Events {
		if _, err := tx.Exec(
			"INSERT INTO events (run_id, tick, description, category) VALUES (?, ?, ?, ?)",
			db.runID, e.Tick, e.Description, e.Category,
		); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
	}

	return tx.Commit()
}

// SaveEvents appends events to the current run.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, tick, description, category) VALUES (?, ?, ?, ?)",
			db.runID, e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FinishRun closes the current run with its outcome.
func (db *DB) FinishRun(res engine.RunResult) error {
	_, err := db.conn.Exec(
		"UPDATE runs SET finished_at = ?, reason = ?, ticks = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), res.Reason, res.Ticks, db.runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	slog.Info("journal run finished", "run", db.runID, "ticks", res.Ticks, "reason", res.Reason)
	return nil
}

// Runs lists recorded runs, newest first.
func (db *DB) Runs(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, started_at, finished_at, reason, ticks, planets, vehicles, people FROM runs ORDER BY rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// History returns the most recent tick summaries of the current run,
// oldest first.
func (db *DB) History(limit int) ([]TickRecord, error) {
	var ticks []TickRecord
	err := db.conn.Select(&ticks, `
		SELECT tick, on_planets, aboard, deaths, waiting, in_transit, arrived, destroyed
		FROM (SELECT * FROM ticks WHERE run_id = ? ORDER BY tick DESC LIMIT ?)
		ORDER BY tick ASC`,
		db.runID, limit,
	)
	return ticks, err
}

// VehicleHistory returns every recorded row for one vehicle in the current run.
func (db *DB) VehicleHistory(name string) ([]VehicleRecord, error) {
	var rows []VehicleRecord
	err := db.conn.Select(&rows,
		"SELECT tick, name, status, remaining, passengers FROM vehicle_states WHERE run_id = ? AND name = ? ORDER BY tick",
		db.runID, name,
	)
	return rows, err
}

// RecentEvents returns the most recent N events of the current run, newest
// first. An empty category matches every event.
func (db *DB) RecentEvents(limit int, category string) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events, `
		SELECT tick, description, category FROM events
		WHERE run_id = ? AND (? = '' OR category = ?)
		ORDER BY id DESC LIMIT ?`,
		db.runID, category, category, limit,
	)
	return events, err
}

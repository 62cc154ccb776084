package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/space-travel/internal/engine"
	"github.com/talgya/space-travel/internal/population"
	"github.com/talgya/space-travel/internal/transit"
	"github.com/talgya/space-travel/internal/world"
)

func newSim(t *testing.T) *engine.Simulation {
	t.Helper()
	earth, err := world.NewPlanet("Earth", 24, "01.01.2400")
	if err != nil {
		t.Fatalf("NewPlanet: %v", err)
	}
	mars, err := world.NewPlanet("Mars", 24, "01.01.2400")
	if err != nil {
		t.Fatalf("NewPlanet: %v", err)
	}
	falcon, err := transit.New("Falcon", "Earth", "Mars", "01.01.2400", 3)
	if err != nil {
		t.Fatalf("transit.New: %v", err)
	}
	lost, err := transit.New("Lost", "Earth", "Pluto", "05.01.2400", 3)
	if err != nil {
		t.Fatalf("transit.New: %v", err)
	}
	sim, err := engine.NewSimulation(
		[]*world.Planet{earth, mars},
		[]*transit.Vehicle{falcon, lost},
		[]*population.Person{population.NewPerson("Ann", 30, 100, "Falcon")},
	)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	return sim
}

func openDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestJournalRecordsRun(t *testing.T) {
	db := openDB(t)
	sim := newSim(t)

	id, err := db.BeginRun(sim)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if id == "" || db.RunID() != id {
		t.Fatalf("Expected run id, got %q", id)
	}

	for i := 0; i < 5; i++ {
		if err := db.RecordSnapshot(sim.Snapshot(sim.Tick())); err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}
	if err := db.FinishRun(engine.RunResult{Ticks: 5, Reason: engine.ReasonTickCap}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	history, err := db.History(3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 || history[0].Tick != 3 || history[2].Tick != 5 {
		t.Fatalf("Expected ticks 3..5, got %+v", history)
	}
	if history[2].OnPlanets != 1 || history[2].Arrived != 1 {
		t.Errorf("Expected Ann delivered by tick 5, got %+v", history[2])
	}

	rows, err := db.VehicleHistory("Falcon")
	if err != nil {
		t.Fatalf("VehicleHistory: %v", err)
	}
	if len(rows) != 5 || rows[0].Status != "In Transit" || rows[4].Status != "Arrived" {
		t.Errorf("Unexpected Falcon rows %+v", rows)
	}

	events, err := db.RecentEvents(10, "")
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	// Newest first: arrival, departure, then the dangling report from construction.
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %+v", events)
	}
	if events[0].Category != engine.CategoryArrival || events[2].Category != engine.CategoryDangling {
		t.Errorf("Unexpected event order %+v", events)
	}

	arrivals, err := db.RecentEvents(10, engine.CategoryArrival)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(arrivals) != 1 || arrivals[0].Category != engine.CategoryArrival {
		t.Errorf("Expected only the arrival, got %+v", arrivals)
	}

	runs, err := db.Runs(10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Reason != engine.ReasonTickCap || runs[0].Ticks != 5 || runs[0].People != 1 {
		t.Errorf("Unexpected runs %+v", runs)
	}
}

func TestJournalSeparatesRuns(t *testing.T) {
	db := openDB(t)

	first := newSim(t)
	if _, err := db.BeginRun(first); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := db.RecordSnapshot(first.Snapshot(first.Tick())); err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}

	second := newSim(t)
	if _, err := db.BeginRun(second); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := db.RecordSnapshot(second.Snapshot(second.Tick())); err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}

	history, err := db.History(100)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected only the current run's tick, got %d", len(history))
	}
	runs, err := db.Runs(10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("Expected 2 runs, got %d", len(runs))
	}
}

func TestRecordSnapshotRequiresRun(t *testing.T) {
	db := openDB(t)
	if err := db.RecordSnapshot(engine.Snapshot{Tick: 1}); err == nil {
		t.Error("Expected error without BeginRun")
	}
}

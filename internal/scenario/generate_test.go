package scenario

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/talgya/space-travel/internal/engine"
	"github.com/talgya/space-travel/internal/loader"
	"github.com/talgya/space-travel/internal/transit"
	"github.com/talgya/space-travel/internal/world"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 42

	a, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical scenarios for the same seed")
	}
	if len(a.Planets) != cfg.Planets || len(a.Vehicles) != cfg.Vehicles || len(a.People) != cfg.People {
		t.Errorf("Unexpected sizes %d/%d/%d", len(a.Planets), len(a.Vehicles), len(a.People))
	}
}

func TestGenerateRespectsRanges(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 7
	sc, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, p := range sc.Planets {
		if p.DayLength < cfg.DayLength.Min || p.DayLength > cfg.DayLength.Max {
			t.Errorf("planet %s day length %d out of range", p.Name, p.DayLength)
		}
	}
	maxDuration := cfg.HoursPerRing + cfg.DurationJitter.Max
	for _, v := range sc.Vehicles {
		if v.From == v.To {
			t.Errorf("vehicle %s loops to its own planet", v.Name)
		}
		if v.Duration < 0 || v.Duration > maxDuration {
			t.Errorf("vehicle %s duration %d out of range", v.Name, v.Duration)
		}
	}
	for _, p := range sc.People {
		if p.Life < cfg.Life.Min || p.Life > cfg.Life.Max {
			t.Errorf("person %s life %d out of range", p.Name, p.Life)
		}
		if p.Age < cfg.Age.Min || p.Age > cfg.Age.Max {
			t.Errorf("person %s age %d out of range", p.Name, p.Age)
		}
	}
}

func TestWrittenScenarioRunsToCompletion(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 1234
	sc, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	dir := t.TempDir()
	if err := sc.Write(dir); err != nil {
		t.Fatalf("Write: %v", err)
	}
	recs, err := loader.Load(
		filepath.Join(dir, PlanetsFile),
		filepath.Join(dir, VehiclesFile),
		filepath.Join(dir, PeopleFile),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs.Skipped) != 0 {
		t.Fatalf("Expected no skipped records, got %v", recs.Skipped)
	}

	sim, err := engine.NewSimulation(recs.Planets, recs.Vehicles, recs.People)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	if len(sim.Problems) != 0 {
		t.Fatalf("Expected no dangling references, got %v", sim.Problems)
	}
	for !sim.Done() && sim.LastTick < 10000 {
		sim.Tick()
	}
	if !sim.Done() {
		t.Fatal("generated scenario did not complete")
	}
	st := sim.Stats
	if st.OnPlanets+st.Aboard+st.Deaths != cfg.People {
		t.Errorf("headcount mismatch: %+v", st)
	}
}

func TestShortestDayStillDeparts(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 7
	cfg.DayLength = Range{Min: 2, Max: 2}
	cfg.DepartureWindow = 0
	sc, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var planets []*world.Planet
	for _, p := range sc.Planets {
		planet, err := world.NewPlanet(p.Name, p.DayLength, p.Date)
		if err != nil {
			t.Fatalf("NewPlanet: %v", err)
		}
		planets = append(planets, planet)
	}
	var vehicles []*transit.Vehicle
	for _, v := range sc.Vehicles {
		vehicle, err := transit.New(v.Name, v.From, v.To, v.Departure, v.Duration)
		if err != nil {
			t.Fatalf("transit.New: %v", err)
		}
		vehicles = append(vehicles, vehicle)
	}
	sim, err := engine.NewSimulation(planets, vehicles, nil)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}

	sim.Tick()
	if sim.Stats.Waiting != 0 {
		t.Errorf("Expected every vehicle to leave on the first tick, %d still waiting", sim.Stats.Waiting)
	}
	for !sim.Done() && sim.LastTick < 10000 {
		sim.Tick()
	}
	if !sim.Done() {
		t.Error("Expected the run to complete")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	body := "seed: 99\nplanets: 3\npeople: 10\nday_length:\n  min: 5\n  max: 6\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Seed != 99 || cfg.Planets != 3 || cfg.People != 10 {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.DayLength != (Range{Min: 5, Max: 6}) {
		t.Errorf("Expected day length 5..6, got %+v", cfg.DayLength)
	}
	if cfg.Vehicles != DefaultGenConfig().Vehicles {
		t.Errorf("Expected default vehicles to survive, got %d", cfg.Vehicles)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*GenConfig)
	}{
		{"one planet", func(c *GenConfig) { c.Planets = 1 }},
		{"zero day length", func(c *GenConfig) { c.DayLength = Range{Min: 0, Max: 3} }},
		{"one hour day", func(c *GenConfig) { c.DayLength = Range{Min: 1, Max: 1} }},
		{"inverted life", func(c *GenConfig) { c.Life = Range{Min: 10, Max: 5} }},
		{"bad residents", func(c *GenConfig) { c.Residents = 1.5 }},
		{"bad date", func(c *GenConfig) { c.StartDate = "31.01.2400" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultGenConfig()
			tc.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
	if err := DefaultGenConfig().Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestPersonID(t *testing.T) {
	cases := map[int]string{0: "A", 25: "Z", 26: "AA", 27: "AB", 701: "ZZ", 702: "AAA"}
	for in, want := range cases {
		if got := personID(in); got != want {
			t.Errorf("personID(%d) = %s, want %s", in, got, want)
		}
	}
}

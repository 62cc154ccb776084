// Scenario generation using simplex noise.
// Planets sit on a ring; day lengths, travel durations and lifespans are
// sampled from independent noise fields so neighbouring entities get
// similar values.
package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"
	"gopkg.in/yaml.v3"

	"github.com/talgya/space-travel/internal/calendar"
)

// Record file names written by Write.
const (
	PlanetsFile  = "planets.txt"
	VehiclesFile = "vehicles.txt"
	PeopleFile   = "people.txt"
)

// maxPlanets stays well below the number of distinct generated names.
const maxPlanets = 1000

// Range is an inclusive integer interval.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func (r Range) valid() bool { return r.Min >= 0 && r.Max >= r.Min }

// scale maps a normalized noise value in [0,1] onto the range.
func (r Range) scale(v float64) int {
	v = math.Max(0, math.Min(1, v))
	return r.Min + int(math.Round(v*float64(r.Max-r.Min)))
}

// GenConfig holds scenario generation parameters.
type GenConfig struct {
	Seed      int64   `yaml:"seed"` // 0 = random
	Planets   int     `yaml:"planets"`
	Vehicles  int     `yaml:"vehicles"`
	People    int     `yaml:"people"`
	StartDate string  `yaml:"start_date"`
	Residents float64 `yaml:"residents"` // Share of people who start as planet residents

	DayLength       Range `yaml:"day_length"`       // Hours
	HoursPerRing    int   `yaml:"hours_per_ring"`   // Travel time across the ring diameter
	DurationJitter  Range `yaml:"duration_jitter"`  // Extra hours added to the distance term
	DepartureWindow int   `yaml:"departure_window"` // Departure within this many local days of the start
	Age             Range `yaml:"age"`              // Years
	Life            Range `yaml:"life"`             // Remaining hours
}

// DefaultGenConfig returns a small, completable scenario.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Planets:         5,
		Vehicles:        8,
		People:          60,
		StartDate:       "01.01.2400",
		Residents:       0.3,
		DayLength:       Range{Min: 10, Max: 40},
		HoursPerRing:    120,
		DurationJitter:  Range{Min: 0, Max: 24},
		DepartureWindow: 5,
		Age:             Range{Min: 18, Max: 90},
		Life:            Range{Min: 24, Max: 2000},
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (GenConfig, error) {
	cfg := DefaultGenConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first unusable parameter.
func (c GenConfig) Validate() error {
	switch {
	case c.Planets < 2 || c.Planets > maxPlanets:
		return fmt.Errorf("planets must be within 2..%d, got %d", maxPlanets, c.Planets)
	case c.Vehicles < 0 || c.People < 0:
		return fmt.Errorf("vehicles and people must not be negative")
	case c.Residents < 0 || c.Residents > 1:
		return fmt.Errorf("residents must be within 0..1, got %v", c.Residents)
	// A one-hour day has already rolled over by the first departure check,
	// so vehicles scheduled for the start date would never leave.
	case !c.DayLength.valid() || c.DayLength.Min < 2:
		return fmt.Errorf("day_length must be a range starting at 2 or more, got %d..%d", c.DayLength.Min, c.DayLength.Max)
	case c.HoursPerRing < 0 || !c.DurationJitter.valid():
		return fmt.Errorf("travel time parameters must not be negative")
	case c.DepartureWindow < 0:
		return fmt.Errorf("departure_window must not be negative")
	case !c.Age.valid() || !c.Life.valid():
		return fmt.Errorf("age and life must be non-negative ranges")
	}
	if _, err := calendar.Parse(c.StartDate); err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	return nil
}

// PlanetRecord is one line of the planets file.
type PlanetRecord struct {
	Name      string
	DayLength int
	Date      string
}

// VehicleRecord is one line of the vehicles file.
type VehicleRecord struct {
	Name      string
	From, To  string
	Departure string
	Duration  int
}

// PersonRecord is one line of the people file.
type PersonRecord struct {
	Name     string
	Age      int
	Life     int
	Location string
}

// Scenario is a complete generated input set.
type Scenario struct {
	Seed     int64
	Planets  []PlanetRecord
	Vehicles []VehicleRecord
	People   []PersonRecord
}

// Generate builds a scenario. The same config and non-zero seed always give
// the same scenario.
func Generate(cfg GenConfig) (*Scenario, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	dayNoise := opensimplex.NewNormalized(seed)
	travelNoise := opensimplex.NewNormalized(seed + 1)
	lifeNoise := opensimplex.NewNormalized(seed + 2)

	start, _ := calendar.Normalize(cfg.StartDate)
	sc := &Scenario{Seed: seed}

	// Planets on a unit ring.
	type point struct{ x, y float64 }
	positions := make([]point, cfg.Planets)
	names := uniqueNames(rng, cfg.Planets, planetSyllables)
	for i := range positions {
		angle := 2 * math.Pi * float64(i) / float64(cfg.Planets)
		positions[i] = point{math.Cos(angle), math.Sin(angle)}
		day := octaveNoise(dayNoise, positions[i].x, positions[i].y, 3, 1.5, 0.5)
		sc.Planets = append(sc.Planets, PlanetRecord{
			Name:      names[i],
			DayLength: cfg.DayLength.scale(day),
			Date:      start,
		})
	}

	for i := 0; i < cfg.Vehicles; i++ {
		from := rng.Intn(cfg.Planets)
		to := rng.Intn(cfg.Planets - 1)
		if to >= from {
			to++
		}
		dist := math.Hypot(positions[from].x-positions[to].x, positions[from].y-positions[to].y) / 2
		jitter := octaveNoise(travelNoise, float64(from), float64(to)+float64(i)*0.37, 2, 0.8, 0.5)
		duration := int(math.Round(dist*float64(cfg.HoursPerRing))) + cfg.DurationJitter.scale(jitter)

		p := sc.Planets[from]
		cal, err := calendar.New(p.Date, p.DayLength)
		if err != nil {
			return nil, err
		}
		if cfg.DepartureWindow > 0 {
			cal.AdvanceHours(rng.Intn(cfg.DepartureWindow+1) * p.DayLength)
		}

		sc.Vehicles = append(sc.Vehicles, VehicleRecord{
			Name:      fmt.Sprintf("%s-%d", vehiclePrefixes[i%len(vehiclePrefixes)], i+1),
			From:      p.Name,
			To:        sc.Planets[to].Name,
			Departure: cal.CurrentDate(),
			Duration:  duration,
		})
	}

	for i := 0; i < cfg.People; i++ {
		var location string
		if len(sc.Vehicles) == 0 || rng.Float64() < cfg.Residents {
			location = sc.Planets[rng.Intn(len(sc.Planets))].Name
		} else {
			location = sc.Vehicles[rng.Intn(len(sc.Vehicles))].Name
		}
		life := octaveNoise(lifeNoise, float64(i)*0.15, 0, 3, 1, 0.5)
		sc.People = append(sc.People, PersonRecord{
			Name:     fmt.Sprintf("%s %s", givenNames[rng.Intn(len(givenNames))], personID(i)),
			Age:      cfg.Age.Min + rng.Intn(cfg.Age.Max-cfg.Age.Min+1),
			Life:     cfg.Life.scale(life),
			Location: location,
		})
	}

	return sc, nil
}

// Write writes the three record files into dir.
func (s *Scenario) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var b strings.Builder
	for _, p := range s.Planets {
		fmt.Fprintf(&b, "%s#%d#%s\n", p.Name, p.DayLength, p.Date)
	}
	if err := os.WriteFile(filepath.Join(dir, PlanetsFile), []byte(b.String()), 0o644); err != nil {
		return err
	}

	b.Reset()
	for _, v := range s.Vehicles {
		fmt.Fprintf(&b, "%s#%s#%s#%s#%d\n", v.Name, v.From, v.To, v.Departure, v.Duration)
	}
	if err := os.WriteFile(filepath.Join(dir, VehiclesFile), []byte(b.String()), 0o644); err != nil {
		return err
	}

	b.Reset()
	for _, p := range s.People {
		fmt.Fprintf(&b, "%s#%d#%d#%s\n", p.Name, p.Age, p.Life, p.Location)
	}
	return os.WriteFile(filepath.Join(dir, PeopleFile), []byte(b.String()), 0o644)
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

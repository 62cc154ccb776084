// Simulation ties together planets, vehicles and people and advances them each tick.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/space-travel/internal/population"
	"github.com/talgya/space-travel/internal/transit"
	"github.com/talgya/space-travel/internal/world"
)

// maxEvents bounds the in-memory event history.
const maxEvents = 1000

// Simulation holds the complete run state.
type Simulation struct {
	Planets  []*world.Planet
	Vehicles []*transit.Vehicle
	People   []*population.Person // Master list, used for the hourly aging pass
	Index    *Index               // Immutable name lookups
	Problems []Problem            // Dangling references found at construction
	Events   []Event              // Recent events, oldest first
	LastTick uint64               // Most recent tick processed

	Stats SimStats
	done  bool
}

// Event is a notable occurrence during the run.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "departure", "arrival", "destroyed", "death", "dangling", "error"
}

// Event categories.
const (
	CategoryDeparture = "departure"
	CategoryArrival   = "arrival"
	CategoryDestroyed = "destroyed"
	CategoryDeath     = "death"
	CategoryDangling  = "dangling"
	CategoryError     = "error"
)

// SimStats tracks headcount and vehicle totals.
// Initial == OnPlanets + Aboard + Deaths holds at every tick boundary.
type SimStats struct {
	Initial   int `json:"initial"`
	OnPlanets int `json:"on_planets"`
	Aboard    int `json:"aboard"`
	Deaths    int `json:"deaths"`

	Waiting   int `json:"waiting"`
	InTransit int `json:"in_transit"`
	Arrived   int `json:"arrived"`
	Destroyed int `json:"destroyed"`
}

// Alive returns the number of living people.
func (s SimStats) Alive() int {
	return s.OnPlanets + s.Aboard
}

// NewSimulation builds the lookup index, reports dangling vehicle routes and
// places every person into exactly one planet ledger. Any person whose
// location cannot be resolved fails construction.
func NewSimulation(planets []*world.Planet, vehicles []*transit.Vehicle, people []*population.Person) (*Simulation, error) {
	ix, err := newIndex(planets, vehicles)
	if err != nil {
		return nil, err
	}
	if err := ix.place(people); err != nil {
		return nil, err
	}

	sim := &Simulation{
		Planets:  planets,
		Vehicles: vehicles,
		People:   append([]*population.Person(nil), people...),
		Index:    ix,
		Problems: ix.danglingReferences(vehicles),
	}
	for _, p := range sim.Problems {
		sim.emit(0, CategoryDangling, p.String())
	}
	sim.Stats.Initial = len(people)
	sim.updateStats()
	return sim, nil
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// Done reports whether every vehicle has arrived or been destroyed as of
// the last tick. A run with no vehicles is done after its first tick.
func (s *Simulation) Done() bool {
	return s.done
}

// Tick advances the simulation by one hour and returns the events it produced.
//
// Order within a tick is fixed: age everyone once and reap the dead from the
// planets, advance every calendar, step every non-terminal vehicle, then
// recompute completion.
func (s *Simulation) Tick() []Event {
	s.LastTick++
	tick := s.LastTick
	first := len(s.Events)

	// Aging: every living person loses one hour, wherever they are.
	population.AgeAll(s.People)
	s.People, _ = population.Reap(s.People)
	for _, p := range s.Planets {
		if n := p.Ledger().Reap(); n > 0 {
			s.Stats.Deaths += n
			s.emit(tick, CategoryDeath, fmt.Sprintf("%d died on %s", n, p.Name()))
		}
	}

	for _, p := range s.Planets {
		p.Calendar().AdvanceOneHour()
	}

	for _, v := range s.Vehicles {
		if v.Terminal() {
			continue
		}
		res := v.Step(s.Index.Planet(v.From()), s.Index.Planet(v.To()))
		s.record(tick, v, res)
	}

	s.updateStats()
	s.done = s.Stats.Waiting == 0 && s.Stats.InTransit == 0

	if len(s.Events) > maxEvents {
		trim := len(s.Events) - maxEvents
		s.Events = s.Events[trim:]
		first -= trim
		if first < 0 {
			first = 0
		}
	}
	out := make([]Event, len(s.Events)-first)
	copy(out, s.Events[first:])
	return out
}

// record turns a vehicle step into events and death counts.
func (s *Simulation) record(tick uint64, v *transit.Vehicle, res transit.StepResult) {
	if res.Died > 0 {
		s.Stats.Deaths += res.Died
		s.emit(tick, CategoryDeath, fmt.Sprintf("%d died aboard %s", res.Died, v.Name()))
	}
	if res.Err != nil {
		slog.Error("vehicle transition rejected", "tick", tick, "vehicle", v.Name(), "error", res.Err)
		s.emit(tick, CategoryError, res.Err.Error())
		return
	}
	if res.Departed {
		slog.Info("vehicle departed", "tick", tick, "vehicle", v.Name(), "from", v.From(), "boarded", res.Boarded)
		s.emit(tick, CategoryDeparture, fmt.Sprintf("%s departed %s with %d aboard", v.Name(), v.From(), res.Boarded))
	}
	if res.Destroyed {
		slog.Info("vehicle destroyed", "tick", tick, "vehicle", v.Name())
		s.emit(tick, CategoryDestroyed, fmt.Sprintf("%s lost with all aboard", v.Name()))
	}
	if res.Arrived {
		slog.Info("vehicle arrived", "tick", tick, "vehicle", v.Name(), "to", v.To(), "delivered", res.Delivered)
		s.emit(tick, CategoryArrival, fmt.Sprintf("%s arrived at %s with %d aboard", v.Name(), v.To(), res.Delivered))
	}
}

func (s *Simulation) emit(tick uint64, category, description string) {
	s.Events = append(s.Events, Event{Tick: tick, Description: description, Category: category})
}

func (s *Simulation) updateStats() {
	st := SimStats{Initial: s.Stats.Initial, Deaths: s.Stats.Deaths}
	for _, p := range s.Planets {
		st.OnPlanets += p.Ledger().Len()
	}
	for _, v := range s.Vehicles {
		st.Aboard += v.Passengers()
		switch v.State() {
		case transit.StateDocked:
			st.Waiting++
		case transit.StateInTransit:
			st.InTransit++
		case transit.StateArrived:
			st.Arrived++
		case transit.StateDestroyed:
			st.Destroyed++
		}
	}
	s.Stats = st
}

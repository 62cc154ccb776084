package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/space-travel/internal/population"
	"github.com/talgya/space-travel/internal/transit"
	"github.com/talgya/space-travel/internal/world"
)

var (
	// ErrUnknownLocation is returned when a person's initial location names
	// neither a vehicle nor a planet, or names a vehicle whose departure
	// planet does not exist.
	ErrUnknownLocation = errors.New("unknown location")
	// ErrDuplicateName is returned when two planets or vehicles share a name,
	// or a planet and a vehicle do.
	ErrDuplicateName = errors.New("duplicate name")
)

// Index is the name → entity lookup for planets and vehicles.
// Built once by NewSimulation and never modified afterwards.
type Index struct {
	planets  map[string]*world.Planet
	vehicles map[string]*transit.Vehicle
}

func newIndex(planets []*world.Planet, vehicles []*transit.Vehicle) (*Index, error) {
	ix := &Index{
		planets:  make(map[string]*world.Planet, len(planets)),
		vehicles: make(map[string]*transit.Vehicle, len(vehicles)),
	}

	var errs []error
	for _, p := range planets {
		if _, dup := ix.planets[p.Name()]; dup {
			errs = append(errs, fmt.Errorf("%w: planet %q", ErrDuplicateName, p.Name()))
			continue
		}
		ix.planets[p.Name()] = p
	}
	for _, v := range vehicles {
		if _, dup := ix.vehicles[v.Name()]; dup {
			errs = append(errs, fmt.Errorf("%w: vehicle %q", ErrDuplicateName, v.Name()))
			continue
		}
		if _, clash := ix.planets[v.Name()]; clash {
			errs = append(errs, fmt.Errorf("%w: %q is both a planet and a vehicle", ErrDuplicateName, v.Name()))
			continue
		}
		ix.vehicles[v.Name()] = v
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return ix, nil
}

// Planet returns the planet with the given name, or nil.
func (ix *Index) Planet(name string) *world.Planet {
	return ix.planets[name]
}

// Vehicle returns the vehicle with the given name, or nil.
func (ix *Index) Vehicle(name string) *transit.Vehicle {
	return ix.vehicles[name]
}

// Resolve turns a raw location name into a tagged reference.
// Vehicle names take precedence over planet names.
func (ix *Index) Resolve(name string) (population.Location, bool) {
	if _, ok := ix.vehicles[name]; ok {
		return population.OnVehicle(name), true
	}
	if _, ok := ix.planets[name]; ok {
		return population.AtPlanet(name), true
	}
	return population.Location{}, false
}

// Problem describes a vehicle whose route names a planet that does not
// exist. Such a vehicle never departs or never delivers and keeps the run
// from completing.
type Problem struct {
	Vehicle string `json:"vehicle"`
	Field   string `json:"field"` // "departure" or "destination"
	Planet  string `json:"planet"`
}

// String implements fmt.Stringer.
func (p Problem) String() string {
	return fmt.Sprintf("vehicle %s: %s planet %q not found", p.Vehicle, p.Field, p.Planet)
}

// danglingReferences lists vehicles whose route cannot be resolved.
func (ix *Index) danglingReferences(vehicles []*transit.Vehicle) []Problem {
	var problems []Problem
	for _, v := range vehicles {
		if ix.Planet(v.From()) == nil {
			problems = append(problems, Problem{Vehicle: v.Name(), Field: "departure", Planet: v.From()})
		}
		if ix.Planet(v.To()) == nil {
			problems = append(problems, Problem{Vehicle: v.Name(), Field: "destination", Planet: v.To()})
		}
	}
	for _, p := range problems {
		slog.Warn("dangling reference", "vehicle", p.Vehicle, "field", p.Field, "planet", p.Planet)
	}
	return problems
}

// place puts every person into exactly one container. A person tagged with a
// vehicle waits in that vehicle's departure planet ledger; a person tagged
// with a planet is resident there.
func (ix *Index) place(people []*population.Person) error {
	var errs []error
	for _, p := range people {
		loc, ok := ix.Resolve(p.Location.Name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: person %s: %q is neither a vehicle nor a planet",
				ErrUnknownLocation, p.Name, p.Location.Name))
			continue
		}

		switch loc.Kind {
		case population.LocationVehicle:
			v := ix.Vehicle(loc.Name)
			from := ix.Planet(v.From())
			if from == nil {
				errs = append(errs, fmt.Errorf("%w: person %s: vehicle %s departs from unknown planet %q",
					ErrUnknownLocation, p.Name, v.Name(), v.From()))
				continue
			}
			p.Location = loc
			from.Ledger().Add(p)
		case population.LocationPlanet:
			ix.Planet(loc.Name).Settle(p)
		}
	}
	return errors.Join(errs...)
}

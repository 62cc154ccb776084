// Package transit implements the vehicle state machine: docking, boarding,
// travel, loss of all passengers, and delivery at the destination.
package transit

import (
	"errors"
	"fmt"

	"github.com/talgya/space-travel/internal/calendar"
	"github.com/talgya/space-travel/internal/population"
	"github.com/talgya/space-travel/internal/world"
)

// State is the single lifecycle tag of a vehicle.
type State uint8

const (
	StateDocked    State = iota // Waiting at the departure planet
	StateInTransit              // Underway
	StateArrived                // Terminal: passengers delivered
	StateDestroyed              // Terminal: every passenger died en route
)

var stateNames = [...]string{"Waiting", "In Transit", "Arrived", "Destroyed"}

// String returns the display name of the state.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Terminal reports whether no further transition can occur.
func (s State) Terminal() bool {
	return s == StateArrived || s == StateDestroyed
}

// transitions lists every legal edge of the state machine.
var transitions = map[State][]State{
	StateDocked:    {StateInTransit},
	StateInTransit: {StateArrived, StateDestroyed},
}

var (
	// ErrInvalidTransition is returned when a state change is not in the table.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrInvalidDuration is returned for a negative travel duration.
	ErrInvalidDuration = errors.New("invalid travel duration")
)

// Vehicle is a transit unit travelling once from one planet to another.
type Vehicle struct {
	name          string
	from          string
	to            string
	departureDate string // Normalized dd.mm.yyyy
	duration      int

	state       State
	remaining   int
	manifest    []*population.Person
	boarded     int
	arrivalDate string
}

// New creates a docked vehicle. The departure date must be a valid calendar date.
func New(name, from, to, departureDate string, duration int) (*Vehicle, error) {
	date, err := calendar.Normalize(departureDate)
	if err != nil {
		return nil, fmt.Errorf("vehicle %s: %w", name, err)
	}
	if duration < 0 {
		return nil, fmt.Errorf("vehicle %s: %w: %d", name, ErrInvalidDuration, duration)
	}
	return &Vehicle{
		name:          name,
		from:          from,
		to:            to,
		departureDate: date,
		duration:      duration,
		state:         StateDocked,
		remaining:     duration,
	}, nil
}

// StepResult reports what happened to a vehicle during one tick.
type StepResult struct {
	Departed  bool
	Boarded   int
	Died      int // Passengers reaped from the manifest
	Destroyed bool
	Arrived   bool
	Delivered int
	Err       error
}

// Step evaluates the transitions for one tick, in order:
// departure, travel, arrival. from and to may be nil when the named planet
// does not exist; such a vehicle never departs or never delivers.
//
// Aging is not applied here. The caller ages every person once per tick
// before calling Step; Step only removes those already dead.
func (v *Vehicle) Step(from, to *world.Planet) StepResult {
	var res StepResult

	switch v.state {
	case StateArrived, StateDestroyed:
		return res
	case StateInTransit:
		v.travel(&res)
		if res.Err != nil || v.state == StateDestroyed {
			return res
		}
	case StateDocked:
		v.depart(from, &res)
		if res.Err != nil {
			return res
		}
	}

	if v.state == StateInTransit {
		v.arrive(to, &res)
	}
	return res
}

func (v *Vehicle) depart(from *world.Planet, res *StepResult) {
	if from == nil || !from.Calendar().MatchesDate(v.departureDate) {
		return
	}
	if err := v.transition(StateInTransit); err != nil {
		res.Err = err
		return
	}
	boarding := from.Ledger().ExtractByDestination(v.name)
	v.manifest = append(v.manifest, boarding...)
	v.boarded = len(boarding)
	v.remaining = v.duration
	res.Departed = true
	res.Boarded = len(boarding)
}

func (v *Vehicle) travel(res *StepResult) {
	if v.remaining > 0 {
		v.remaining--
	}

	hadPassengers := len(v.manifest) > 0
	v.manifest, res.Died = population.Reap(v.manifest)
	if hadPassengers && len(v.manifest) == 0 {
		if err := v.transition(StateDestroyed); err != nil {
			res.Err = err
			return
		}
		v.manifest = nil
		res.Destroyed = true
	}
}

func (v *Vehicle) arrive(to *world.Planet, res *StepResult) {
	if v.remaining > 0 || to == nil {
		return
	}
	if err := v.transition(StateArrived); err != nil {
		res.Err = err
		return
	}
	for _, p := range v.manifest {
		to.Settle(p)
	}
	res.Arrived = true
	res.Delivered = len(v.manifest)
	v.manifest = nil
	v.arrivalDate = to.Calendar().CurrentDate()
}

func (v *Vehicle) transition(next State) error {
	for _, allowed := range transitions[v.state] {
		if allowed == next {
			v.state = next
			return nil
		}
	}
	return fmt.Errorf("vehicle %s: %w: %s -> %s", v.name, ErrInvalidTransition, v.state, next)
}

// Name returns the vehicle name.
func (v *Vehicle) Name() string { return v.name }

// From returns the departure planet name.
func (v *Vehicle) From() string { return v.from }

// To returns the destination planet name.
func (v *Vehicle) To() string { return v.to }

// DepartureDate returns the normalized departure date.
func (v *Vehicle) DepartureDate() string { return v.departureDate }

// Duration returns the total travel time in hours.
func (v *Vehicle) Duration() int { return v.duration }

// State returns the current lifecycle state.
func (v *Vehicle) State() State { return v.state }

// Terminal reports whether the vehicle has arrived or been destroyed.
func (v *Vehicle) Terminal() bool { return v.state.Terminal() }

// Remaining returns hours of travel left.
func (v *Vehicle) Remaining() int { return v.remaining }

// Boarded returns how many people boarded at departure.
func (v *Vehicle) Boarded() int { return v.boarded }

// Manifest returns a copy of the people currently aboard.
func (v *Vehicle) Manifest() []*population.Person {
	out := make([]*population.Person, len(v.manifest))
	copy(out, v.manifest)
	return out
}

// Passengers returns the number of people currently aboard.
func (v *Vehicle) Passengers() int { return len(v.manifest) }

// ArrivalDate returns the actual arrival date once arrived, otherwise the
// scheduled one computed on the departure planet's calendar. Returns "--"
// for a destroyed vehicle or when from is nil.
func (v *Vehicle) ArrivalDate(from *world.Planet) string {
	switch {
	case v.state == StateDestroyed:
		return "--"
	case v.state == StateArrived:
		return v.arrivalDate
	case from == nil:
		return "--"
	}
	cal, err := calendar.New(v.departureDate, from.DayLength())
	if err != nil {
		return "--"
	}
	cal.AdvanceHours(v.duration)
	return cal.CurrentDate()
}

// String implements fmt.Stringer.
func (v *Vehicle) String() string {
	switch v.state {
	case StateDestroyed:
		return v.name + " (DESTROYED)"
	case StateInTransit:
		return fmt.Sprintf("%s (%s -> %s, Time remaining: %d hours, Passengers: %d)",
			v.name, v.from, v.to, v.remaining, len(v.manifest))
	case StateArrived:
		return fmt.Sprintf("%s (Arrived at %s, Passengers: %d)", v.name, v.to, v.boarded)
	default:
		return fmt.Sprintf("%s (On planet %s, Passengers: %d)", v.name, v.from, len(v.manifest))
	}
}

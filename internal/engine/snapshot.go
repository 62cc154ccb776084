package engine

import (
	"strconv"

	"github.com/talgya/space-travel/internal/transit"
)

// Snapshot is an immutable view of the run after a tick, for reporting.
type Snapshot struct {
	Tick     uint64        `json:"tick"`
	Done     bool          `json:"done"`
	Planets  []PlanetView  `json:"planets"`
	Vehicles []VehicleView `json:"vehicles"`
	Stats    SimStats      `json:"stats"`
	Problems []Problem     `json:"problems,omitempty"`
	Events   []Event       `json:"events,omitempty"` // Produced by this tick only
}

// PlanetView is one planet row.
type PlanetView struct {
	Name       string `json:"name"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	DayLength  int    `json:"day_length"`
	Population int    `json:"population"`
}

// VehicleView is one vehicle row.
type VehicleView struct {
	Name        string        `json:"name"`
	State       transit.State `json:"-"`
	Status      string        `json:"status"`
	From        string        `json:"from"`
	To          string        `json:"to"`
	Remaining   int           `json:"remaining"`
	Passengers  int           `json:"passengers"`
	Boarded     int           `json:"boarded"`
	ArrivalDate string        `json:"arrival_date"`
}

// RemainingLabel is the hours-remaining column: "--" once destroyed,
// "0" once arrived, otherwise the countdown.
func (v VehicleView) RemainingLabel() string {
	switch v.State {
	case transit.StateDestroyed:
		return "--"
	case transit.StateArrived:
		return "0"
	}
	return strconv.Itoa(v.Remaining)
}

// Snapshot captures the current state. events are attached as the tick's events.
func (s *Simulation) Snapshot(events []Event) Snapshot {
	snap := Snapshot{
		Tick:     s.LastTick,
		Done:     s.done,
		Planets:  make([]PlanetView, 0, len(s.Planets)),
		Vehicles: make([]VehicleView, 0, len(s.Vehicles)),
		Stats:    s.Stats,
		Problems: append([]Problem(nil), s.Problems...),
		Events:   events,
	}
	for _, p := range s.Planets {
		snap.Planets = append(snap.Planets, PlanetView{
			Name:       p.Name(),
			Date:       p.Calendar().CurrentDate(),
			Time:       p.Calendar().FullTime(),
			DayLength:  p.DayLength(),
			Population: p.Ledger().Len(),
		})
	}
	for _, v := range s.Vehicles {
		snap.Vehicles = append(snap.Vehicles, VehicleView{
			Name:        v.Name(),
			State:       v.State(),
			Status:      v.State().String(),
			From:        v.From(),
			To:          v.To(),
			Remaining:   v.Remaining(),
			Passengers:  v.Passengers(),
			Boarded:     v.Boarded(),
			ArrivalDate: v.ArrivalDate(s.Index.Planet(v.From())),
		})
	}
	return snap
}

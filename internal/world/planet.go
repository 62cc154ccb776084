// Package world provides planets: a named calendar plus its resident ledger.
package world

import (
	"fmt"

	"github.com/talgya/space-travel/internal/calendar"
	"github.com/talgya/space-travel/internal/population"
)

// Planet owns its calendar and the people currently resident on it.
type Planet struct {
	name      string
	dayLength int
	cal       *calendar.Calendar
	ledger    *population.Ledger
}

// NewPlanet creates a planet whose calendar starts at hour 0 of startDate.
func NewPlanet(name string, dayLength int, startDate string) (*Planet, error) {
	cal, err := calendar.New(startDate, dayLength)
	if err != nil {
		return nil, fmt.Errorf("planet %s: %w", name, err)
	}
	return &Planet{
		name:      name,
		dayLength: dayLength,
		cal:       cal,
		ledger:    population.NewLedger(),
	}, nil
}

// Name returns the planet name.
func (p *Planet) Name() string { return p.name }

// DayLength returns hours per day. Fixed at creation.
func (p *Planet) DayLength() int { return p.dayLength }

// Calendar returns the planet's clock.
func (p *Planet) Calendar() *calendar.Calendar { return p.cal }

// Ledger returns the resident population.
func (p *Planet) Ledger() *population.Ledger { return p.ledger }

// Settle makes a person resident here, tagging them with this planet.
func (p *Planet) Settle(person *population.Person) {
	person.Location = population.AtPlanet(p.name)
	p.ledger.Add(person)
}

// String returns a summary of the planet.
func (p *Planet) String() string {
	return fmt.Sprintf("%s (Time: %s, Population: %d people)",
		p.name, p.cal.FullTime(), p.ledger.Len())
}

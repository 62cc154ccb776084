// Package population provides people, their locations, and the per-planet ledger.
package population

import "fmt"

// LocationKind distinguishes the two namespaces a location can refer to.
type LocationKind uint8

const (
	LocationUnresolved LocationKind = iota // Raw name from the input, not yet placed
	LocationPlanet                         // Resident on a planet
	LocationVehicle                        // Awaiting or aboard a vehicle
)

// Location is a tagged reference to a planet or a vehicle by name.
type Location struct {
	Kind LocationKind `json:"kind"`
	Name string       `json:"name"`
}

// AtPlanet returns a planet location.
func AtPlanet(name string) Location {
	return Location{Kind: LocationPlanet, Name: name}
}

// OnVehicle returns a vehicle location.
func OnVehicle(name string) Location {
	return Location{Kind: LocationVehicle, Name: name}
}

// String implements fmt.Stringer.
func (l Location) String() string {
	return l.Name
}

// Person is a single inhabitant with a bounded remaining life.
type Person struct {
	Name          string   `json:"name"`
	Age           int      `json:"age"`            // Years, never mutated
	LifeRemaining int      `json:"life_remaining"` // Hours
	Location      Location `json:"location"`
}

// NewPerson creates a person whose initial location is an unresolved name.
// The simulation resolves it against vehicles and planets when placing people.
func NewPerson(name string, age, lifeRemaining int, location string) *Person {
	return &Person{
		Name:          name,
		Age:           age,
		LifeRemaining: lifeRemaining,
		Location:      Location{Kind: LocationUnresolved, Name: location},
	}
}

// Alive reports whether the person has any life left.
func (p *Person) Alive() bool {
	return p.LifeRemaining > 0
}

// PassHour removes one hour of life. Returns true if this hour was the last.
func (p *Person) PassHour() bool {
	if !p.Alive() {
		return false
	}
	p.LifeRemaining--
	return p.LifeRemaining <= 0
}

// String implements fmt.Stringer.
func (p *Person) String() string {
	return fmt.Sprintf("%s (Age: %d, Life Remaining: %d hours, Location: %s)",
		p.Name, p.Age, p.LifeRemaining, p.Location)
}

// AgeAll applies one hour of aging to every living person exactly once and
// returns how many died this hour. The dead stay in their containers until
// the container reaps them.
func AgeAll(people []*Person) int {
	died := 0
	for _, p := range people {
		if p.PassHour() {
			died++
		}
	}
	return died
}

// Reap removes the dead from a slice in place, preserving order.
// Returns the survivors and the number removed.
func Reap(people []*Person) ([]*Person, int) {
	alive := people[:0]
	for _, p := range people {
		if p.Alive() {
			alive = append(alive, p)
		}
	}
	removed := len(people) - len(alive)
	for i := len(alive); i < len(people); i++ {
		people[i] = nil
	}
	return alive, removed
}

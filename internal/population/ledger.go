package population

// Ledger is the ordered set of people resident on one planet.
// Order is insertion order and is kept stable for display.
type Ledger struct {
	residents []*Person
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add appends a resident.
func (l *Ledger) Add(p *Person) {
	l.residents = append(l.residents, p)
}

// ExtractByDestination removes and returns every resident tagged with the
// given vehicle. Everyone else stays, in their original order.
func (l *Ledger) ExtractByDestination(vehicle string) []*Person {
	var boarding []*Person
	remaining := l.residents[:0]
	for _, p := range l.residents {
		if p.Location.Kind == LocationVehicle && p.Location.Name == vehicle {
			boarding = append(boarding, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	for i := len(remaining); i < len(l.residents); i++ {
		l.residents[i] = nil
	}
	l.residents = remaining
	return boarding
}

// Reap drops residents with no life left and returns how many were removed.
// Aging itself is applied once per hour by AgeAll over the whole population.
func (l *Ledger) Reap() int {
	var removed int
	l.residents, removed = Reap(l.residents)
	return removed
}

// Residents returns a copy of the current residents.
func (l *Ledger) Residents() []*Person {
	out := make([]*Person, len(l.residents))
	copy(out, l.residents)
	return out
}

// Len returns the number of residents.
func (l *Ledger) Len() int {
	return len(l.residents)
}

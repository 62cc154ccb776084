package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/talgya/space-travel/internal/engine"
	"github.com/talgya/space-travel/internal/transit"
)

func sampleSnapshot() engine.Snapshot {
	return engine.Snapshot{
		Tick: 1234,
		Planets: []engine.PlanetView{
			{Name: "Earth", Date: "02.01.2400", Population: 12000},
			{Name: "Mars", Date: "01.01.2400", Population: 3},
		},
		Vehicles: []engine.VehicleView{
			{Name: "Falcon", State: transit.StateInTransit, Status: "In Transit", From: "Earth", To: "Mars", Remaining: 7, ArrivalDate: "03.01.2400"},
			{Name: "Eagle", State: transit.StateDestroyed, Status: "Destroyed", From: "Mars", To: "Earth", Remaining: 4, ArrivalDate: "--"},
			{Name: "Hawk", State: transit.StateArrived, Status: "Arrived", From: "Earth", To: "Mars", ArrivalDate: "02.01.2400"},
		},
		Problems: []engine.Problem{{Vehicle: "Lost", Field: "destination", Planet: "Pluto"}},
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)
	if err := r.Render(sampleSnapshot()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, clearScreen) {
		t.Error("Expected no clear sequence for a non-terminal writer")
	}
	for _, want := range []string{
		"Simulation Hour: 1,234\n",
		"--- Earth ---",
		"02.01.2400",
		"12,000",
		"Ship Name    Status       Departure  Destination Hours Remaining",
		"Falcon       In Transit   Earth      Mars       7                    03.01.2400",
		"Eagle        Destroyed    Mars       Earth      --                   --",
		"Hawk         Arrived      Earth      Mars       0                    02.01.2400",
		`vehicle Lost: destination planet "Pluto" not found`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
}

func TestFinish(t *testing.T) {
	cases := []struct {
		res  engine.RunResult
		want string
	}{
		{engine.RunResult{Ticks: 49, Complete: true, Reason: engine.ReasonComplete}, "Simulation complete after 49 hours."},
		{engine.RunResult{Ticks: 1500, Reason: engine.ReasonTickCap}, "Simulation stopped (tick cap) after 1,500 hours."},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := NewRenderer(&buf).Finish(c.res); err != nil {
			t.Fatalf("Finish: %v", err)
		}
		if !strings.Contains(buf.String(), c.want) {
			t.Errorf("Expected %q, got %q", c.want, buf.String())
		}
	}
}

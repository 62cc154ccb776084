package engine

import (
	"context"
	"testing"
	"time"
)

func TestRunCompletes(t *testing.T) {
	sim := mustBuild(t, earthMars, falcon, []personRow{{"Ann", 1000, "Falcon"}})
	eng := NewEngine(sim)

	var published []uint64
	eng.OnTick = func(s Snapshot) { published = append(published, s.Tick) }

	res := eng.Run(context.Background())
	if !res.Complete || res.Reason != ReasonComplete {
		t.Fatalf("Expected complete run, got %+v", res)
	}
	if res.Ticks != 49 {
		t.Errorf("Expected 49 ticks, got %d", res.Ticks)
	}
	if len(published) != 49 || published[48] != 49 {
		t.Errorf("Expected one snapshot per tick, got %d", len(published))
	}
}

func TestRunStopsAtTickCap(t *testing.T) {
	sim := mustBuild(t, earthMars,
		[]vehicleRow{{"Lost", "Earth", "Pluto", "01.01.2400", 1}}, nil)
	eng := NewEngine(sim)
	eng.MaxTicks = 25

	res := eng.Run(context.Background())
	if res.Complete || res.Reason != ReasonTickCap || res.Ticks != 25 {
		t.Errorf("Expected tick cap at 25, got %+v", res)
	}
}

func TestRunAlwaysTicksOnce(t *testing.T) {
	sim := mustBuild(t, earthMars, nil, nil)
	res := NewEngine(sim).Run(context.Background())
	if res.Ticks != 1 || !res.Complete {
		t.Errorf("Expected a single completing tick, got %+v", res)
	}
}

func TestRunCancelled(t *testing.T) {
	sim := mustBuild(t, earthMars, falcon, []personRow{{"Ann", 1000, "Falcon"}})
	eng := NewEngine(sim)
	eng.Interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	eng.OnTick = func(s Snapshot) {
		if s.Tick == 3 {
			cancel()
		}
	}

	res := eng.Run(ctx)
	if res.Reason != ReasonCancelled || res.Complete {
		t.Fatalf("Expected cancellation, got %+v", res)
	}
	if res.Ticks != 3 {
		t.Errorf("Expected cancellation between ticks at 3, got %d", res.Ticks)
	}
}

func TestPausedEngineSteps(t *testing.T) {
	sim := mustBuild(t, earthMars, falcon, []personRow{{"Ann", 1000, "Falcon"}})
	eng := NewEngine(sim)
	eng.MaxTicks = 3
	eng.Pause()

	ticks := make(chan uint64, 8)
	eng.OnTick = func(s Snapshot) { ticks <- s.Tick }

	done := make(chan RunResult, 1)
	go func() { done <- eng.Run(context.Background()) }()

	select {
	case tk := <-ticks:
		t.Fatalf("paused engine ticked (%d)", tk)
	case <-time.After(50 * time.Millisecond):
	}

	for want := uint64(1); want <= 2; want++ {
		eng.Step()
		select {
		case tk := <-ticks:
			if tk != want {
				t.Fatalf("Expected tick %d, got %d", want, tk)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("step %d did not tick", want)
		}
	}

	eng.Resume()
	select {
	case res := <-done:
		if res.Reason != ReasonTickCap || res.Ticks != 3 {
			t.Errorf("Expected tick cap after resume, got %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not finish after resume")
	}
}

func TestSetSpeed(t *testing.T) {
	eng := NewEngine(nil)
	if eng.Speed() != 1 {
		t.Errorf("Expected default speed 1, got %v", eng.Speed())
	}
	eng.SetSpeed(4)
	if eng.Speed() != 4 {
		t.Errorf("Expected speed 4, got %v", eng.Speed())
	}
	eng.SetSpeed(-2)
	if eng.Speed() != 0 {
		t.Errorf("Expected negative speed to pause, got %v", eng.Speed())
	}
}

func TestStepWhileRunningIsDropped(t *testing.T) {
	sim := mustBuild(t, earthMars, falcon, []personRow{{"Ann", 1000, "Falcon"}})
	eng := NewEngine(sim)

	for i := 0; i < 5; i++ {
		eng.Step()
	}
	if n := len(eng.steps); n != 0 {
		t.Errorf("Expected steps to be dropped while running, %d queued", n)
	}

	eng.Pause()
	eng.Step()
	eng.Step()
	eng.Resume()
	eng.Pause()
	if n := len(eng.steps); n != 0 {
		t.Errorf("Expected pause to discard earlier steps, %d queued", n)
	}

	eng.Step()
	if n := len(eng.steps); n != 1 {
		t.Errorf("Expected one queued step while paused, got %d", n)
	}
}

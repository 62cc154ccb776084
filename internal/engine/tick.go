// Package engine provides the orchestrator: the per-tick simulation and the
// loop that drives it until every vehicle has arrived or been destroyed.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Stop reasons reported in RunResult.
const (
	ReasonComplete  = "complete"
	ReasonCancelled = "cancelled"
	ReasonTickCap   = "tick cap"
)

// RunResult summarizes a finished run.
type RunResult struct {
	Ticks    uint64
	Complete bool
	Reason   string
}

// Engine drives a Simulation forward one tick at a time.
type Engine struct {
	Sim      *Simulation
	Interval time.Duration // Wall time per tick at speed 1; 0 runs unthrottled
	MaxTicks uint64        // 0 = no cap

	// OnTick receives the snapshot published after every tick.
	OnTick func(Snapshot)

	mu      sync.Mutex
	speed   float64 // 1.0 = one tick per Interval, 0 = paused
	limiter *rate.Limiter
	wake    chan struct{}
	steps   chan struct{}
}

// NewEngine creates an engine at speed 1.
func NewEngine(sim *Simulation) *Engine {
	return &Engine{
		Sim:   sim,
		speed: 1.0,
		wake:  make(chan struct{}, 1),
		steps: make(chan struct{}, 16),
	}
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. 0 or below pauses the run.
func (e *Engine) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	e.mu.Lock()
	e.speed = speed
	if e.limiter != nil && speed > 0 {
		e.limiter.SetLimit(e.limitFor(speed))
	}
	e.mu.Unlock()

	// Steps requested before this pause must not fire after it.
	if speed == 0 {
		e.drainSteps()
	}

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Pause stops ticking until Resume or Step.
func (e *Engine) Pause() { e.SetSpeed(0) }

// Resume continues at speed 1.
func (e *Engine) Resume() { e.SetSpeed(1) }

// Step runs a single tick while paused. Ignored while running.
func (e *Engine) Step() {
	if e.Speed() > 0 {
		return
	}
	select {
	case e.steps <- struct{}{}:
	default:
	}
}

func (e *Engine) drainSteps() {
	for {
		select {
		case <-e.steps:
		default:
			return
		}
	}
}

func (e *Engine) limitFor(speed float64) rate.Limit {
	return rate.Every(time.Duration(float64(e.Interval) / speed))
}

// Run ticks until every vehicle is terminal, the tick cap is reached, or ctx
// is cancelled. Cancellation only takes effect between ticks. At least one
// tick is run unless ctx is already cancelled or the cap already reached.
func (e *Engine) Run(ctx context.Context) RunResult {
	e.mu.Lock()
	if e.Interval > 0 {
		speed := e.speed
		if speed <= 0 {
			speed = 1
		}
		e.limiter = rate.NewLimiter(e.limitFor(speed), 1)
	}
	e.mu.Unlock()

	slog.Info("simulation engine started",
		"tick", e.Sim.LastTick,
		"planets", len(e.Sim.Planets),
		"vehicles", len(e.Sim.Vehicles),
		"people", e.Sim.Stats.Initial,
		"speed", e.Speed(),
	)

	res := RunResult{}
	for {
		if ctx.Err() != nil {
			res.Reason = ReasonCancelled
			break
		}
		if e.MaxTicks > 0 && e.Sim.LastTick >= e.MaxTicks {
			res.Reason = ReasonTickCap
			break
		}
		if !e.await(ctx) {
			continue
		}

		e.step()
		if e.Sim.Done() {
			res.Reason = ReasonComplete
			res.Complete = true
			break
		}
	}
	res.Ticks = e.Sim.LastTick

	slog.Info("simulation engine stopped", "tick", res.Ticks, "reason", res.Reason)
	return res
}

// await blocks until the next tick may run. Returns false when the loop
// should re-check its exit conditions instead of ticking.
func (e *Engine) await(ctx context.Context) bool {
	if e.Speed() <= 0 {
		select {
		case <-ctx.Done():
			return false
		case <-e.wake:
			return false
		case <-e.steps:
			return true
		}
	}

	e.mu.Lock()
	limiter := e.limiter
	e.mu.Unlock()
	if limiter == nil {
		return true
	}
	return limiter.Wait(ctx) == nil
}

// step advances the simulation by one tick and publishes the snapshot.
func (e *Engine) step() {
	events := e.Sim.Tick()
	slog.Debug("tick", "tick", e.Sim.LastTick, "events", len(events), "alive", e.Sim.Stats.Alive())
	if e.OnTick != nil {
		e.OnTick(e.Sim.Snapshot(events))
	}
}

// Package console reads keyboard commands that pace a running simulation.
package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
)

// Controller is the part of the engine the console drives.
type Controller interface {
	Pause()
	Resume()
	Step()
	Speed() float64
	SetSpeed(float64)
}

// Commands:
//
//	<enter>, s  single step while paused
//	p           pause
//	r           resume at speed 1
//	+ / -       double / halve speed
//	q           quit
const Help = "commands: <enter>/s step, p pause, r resume, + faster, - slower, q quit"

const (
	minSpeed = 1.0 / 64
	maxSpeed = 1024
)

// Run reads one command per line from in until EOF, ctx is done, or the
// user quits. quit is called on "q"; the engine stops between ticks.
func Run(ctx context.Context, in io.Reader, ctl Controller, quit func()) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case line := <-lines:
			if Apply(line, ctl) {
				slog.Info("quit requested from console")
				quit()
				return nil
			}
		}
	}
}

// Apply executes a single command line. Returns true for quit.
func Apply(line string, ctl Controller) bool {
	switch cmd := strings.ToLower(strings.TrimSpace(line)); cmd {
	case "", "s":
		ctl.Step()
	case "p":
		ctl.Pause()
		slog.Info("simulation paused")
	case "r":
		ctl.Resume()
		slog.Info("simulation resumed")
	case "+":
		ctl.SetSpeed(clampSpeed(ctl.Speed() * 2))
		slog.Info("simulation speed changed", "speed", ctl.Speed())
	case "-":
		ctl.SetSpeed(clampSpeed(ctl.Speed() / 2))
		slog.Info("simulation speed changed", "speed", ctl.Speed())
	case "q":
		return true
	default:
		slog.Warn("unknown console command", "command", cmd, "help", Help)
	}
	return false
}

func clampSpeed(s float64) float64 {
	switch {
	case s <= 0:
		return 1
	case s < minSpeed:
		return minSpeed
	case s > maxSpeed:
		return maxSpeed
	}
	return s
}

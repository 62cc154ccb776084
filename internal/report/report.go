// Package report renders simulation snapshots as console tables.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/space-travel/internal/engine"
)

const (
	labelWidth  = 10
	planetWidth = 18
	clearScreen = "\033[H\033[2J"
)

// Renderer writes one table per snapshot.
type Renderer struct {
	w     io.Writer
	clear bool // Redraw in place instead of scrolling
}

// NewRenderer creates a renderer for w. The screen is cleared between
// frames only when w is a terminal.
func NewRenderer(w io.Writer) *Renderer {
	r := &Renderer{w: w}
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		r.clear = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return r
}

// Render draws the snapshot.
func (r *Renderer) Render(s engine.Snapshot) error {
	bw := bufio.NewWriter(r.w)
	if r.clear {
		bw.WriteString(clearScreen)
	}
	writeSnapshot(bw, s)
	return bw.Flush()
}

// Finish draws the closing line of a run.
func (r *Renderer) Finish(res engine.RunResult) error {
	var err error
	switch res.Reason {
	case engine.ReasonComplete:
		_, err = fmt.Fprintf(r.w, "\nSimulation complete after %s hours.\n", humanize.Comma(int64(res.Ticks)))
	default:
		_, err = fmt.Fprintf(r.w, "\nSimulation stopped (%s) after %s hours.\n", res.Reason, humanize.Comma(int64(res.Ticks)))
	}
	return err
}

func writeSnapshot(w io.Writer, s engine.Snapshot) {
	fmt.Fprintf(w, "Simulation Hour: %s\n", humanize.Comma(int64(s.Tick)))
	fmt.Fprintln(w, "Planets:")

	fmt.Fprintf(w, "%-*s", labelWidth, "")
	for _, p := range s.Planets {
		fmt.Fprintf(w, "%-*s", planetWidth, "--- "+p.Name+" ---")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-*s  ", labelWidth, "Date")
	for _, p := range s.Planets {
		fmt.Fprintf(w, "%-*s", planetWidth, p.Date)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-*s  ", labelWidth, "Population")
	for _, p := range s.Planets {
		fmt.Fprintf(w, "%-*s", planetWidth, humanize.Comma(int64(p.Population)))
	}
	fmt.Fprint(w, "\n\n")

	fmt.Fprintln(w, "Spaceships:")
	fmt.Fprintf(w, "%-12s %-12s %-10s %-10s %-20s %-20s\n",
		"Ship Name", "Status", "Departure", "Destination", "Hours Remaining", "Arrival Date")
	for _, v := range s.Vehicles {
		fmt.Fprintf(w, "%-12s %-12s %-10s %-10s %-20s %-20s\n",
			v.Name, v.Status, v.From, v.To, v.RemainingLabel(), v.ArrivalDate)
	}

	if len(s.Problems) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, p := range s.Problems {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}

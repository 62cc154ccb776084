// Package loader reads the '#'-delimited planet, vehicle and person record
// files. Malformed records are skipped and reported; they never reach the
// simulation.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/talgya/space-travel/internal/population"
	"github.com/talgya/space-travel/internal/transit"
	"github.com/talgya/space-travel/internal/world"
)

// Separator splits the fields of a record.
const Separator = "#"

// Minimum field counts per record kind. Extra trailing fields are ignored.
const (
	planetFields  = 3 // name#dayLength#startDate
	vehicleFields = 5 // name#from#to#departureDate#duration
	personFields  = 4 // name#age#lifeRemaining#location
)

// ErrShortRecord is returned for a record with too few fields.
var ErrShortRecord = errors.New("too few fields")

// RecordError identifies a rejected record.
type RecordError struct {
	File string
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Records is the full input of one run.
type Records struct {
	Planets  []*world.Planet
	Vehicles []*transit.Vehicle
	People   []*population.Person
	Skipped  []error // One *RecordError per rejected record
}

// scan calls fn with the trimmed fields of every non-blank line. A record fn
// rejects is collected as a *RecordError; only read failures abort.
func scan(r io.Reader, file string, min int, fn func(fields []string) error) ([]error, error) {
	var skipped []error
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, Separator)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		var err error
		if len(fields) < min {
			err = fmt.Errorf("%w: got %d, want %d", ErrShortRecord, len(fields), min)
		} else {
			err = fn(fields)
		}
		if err != nil {
			rerr := &RecordError{File: file, Line: line, Err: err}
			slog.Warn("record skipped", "file", file, "line", line, "error", err)
			skipped = append(skipped, rerr)
		}
	}
	if err := sc.Err(); err != nil {
		return skipped, fmt.Errorf("read %s: %w", file, err)
	}
	return skipped, nil
}

func atoi(field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", field, value)
	}
	return n, nil
}

// ReadPlanets parses planet records.
func ReadPlanets(r io.Reader, file string) ([]*world.Planet, []error, error) {
	var planets []*world.Planet
	skipped, err := scan(r, file, planetFields, func(f []string) error {
		dayLength, err := atoi("day length", f[1])
		if err != nil {
			return err
		}
		p, err := world.NewPlanet(f[0], dayLength, f[2])
		if err != nil {
			return err
		}
		planets = append(planets, p)
		return nil
	})
	return planets, skipped, err
}

// ReadVehicles parses vehicle records.
func ReadVehicles(r io.Reader, file string) ([]*transit.Vehicle, []error, error) {
	var vehicles []*transit.Vehicle
	skipped, err := scan(r, file, vehicleFields, func(f []string) error {
		duration, err := atoi("duration", f[4])
		if err != nil {
			return err
		}
		v, err := transit.New(f[0], f[1], f[2], f[3], duration)
		if err != nil {
			return err
		}
		vehicles = append(vehicles, v)
		return nil
	})
	return vehicles, skipped, err
}

// ReadPeople parses person records. Locations stay unresolved until the
// simulation places them.
func ReadPeople(r io.Reader, file string) ([]*population.Person, []error, error) {
	var people []*population.Person
	skipped, err := scan(r, file, personFields, func(f []string) error {
		age, err := atoi("age", f[1])
		if err != nil {
			return err
		}
		life, err := atoi("remaining life", f[2])
		if err != nil {
			return err
		}
		if life < 0 {
			return fmt.Errorf("remaining life %d is negative", life)
		}
		if f[3] == "" {
			return errors.New("empty location")
		}
		people = append(people, population.NewPerson(f[0], age, life, f[3]))
		return nil
	})
	return people, skipped, err
}

// Load reads all three record files.
func Load(planetsPath, vehiclesPath, peoplePath string) (*Records, error) {
	recs := &Records{}

	skipped, err := readFile(planetsPath, func(r io.Reader) ([]error, error) {
		var err error
		var s []error
		recs.Planets, s, err = ReadPlanets(r, planetsPath)
		return s, err
	})
	recs.Skipped = append(recs.Skipped, skipped...)
	if err != nil {
		return nil, err
	}

	skipped, err = readFile(vehiclesPath, func(r io.Reader) ([]error, error) {
		var err error
		var s []error
		recs.Vehicles, s, err = ReadVehicles(r, vehiclesPath)
		return s, err
	})
	recs.Skipped = append(recs.Skipped, skipped...)
	if err != nil {
		return nil, err
	}

	skipped, err = readFile(peoplePath, func(r io.Reader) ([]error, error) {
		var err error
		var s []error
		recs.People, s, err = ReadPeople(r, peoplePath)
		return s, err
	})
	recs.Skipped = append(recs.Skipped, skipped...)
	if err != nil {
		return nil, err
	}

	slog.Info("records loaded",
		"planets", len(recs.Planets),
		"vehicles", len(recs.Vehicles),
		"people", len(recs.People),
		"skipped", len(recs.Skipped),
	)
	return recs, nil
}

func readFile(path string, read func(io.Reader) ([]error, error)) ([]error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()
	return read(f)
}

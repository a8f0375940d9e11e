// Package chart reads note schedules ("charts") from CSV.
//
// The format is one header row followed by one note per row:
//
//	user_played,instrument_name,velocity,pitch,start,end
//	True,Piano,69,60,0.5,0.75
//
// Malformed rows are skipped and counted; a missing header is an error.
package chart

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// Header lists the expected column names, in order.
var Header = []string{"user_played", "instrument_name", "velocity", "pitch", "start", "end"}

// Chart is a parsed note schedule.
type Chart struct {
	Notes   []ir.PlayableNote
	Skipped int
}

// Duration returns the latest end time in seconds.
func (c Chart) Duration() float64 {
	var d float64
	for _, n := range c.Notes {
		d = max(d, n.End)
	}
	return d
}

// PlayerNotes counts notes that fall down a lane.
func (c Chart) PlayerNotes() int {
	count := 0
	for _, n := range c.Notes {
		if n.PlayerLane {
			count++
		}
	}
	return count
}

// ParseError describes one rejected row.
type ParseError struct {
	Line  int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrMissingHeader is returned when the first row is not Header.
var ErrMissingHeader = errors.New("chart header missing")

// Load parses the chart at path.
func Load(path string) (Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		return Chart{}, fmt.Errorf("open chart: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return Chart{}, fmt.Errorf("parse chart %s: %w", path, err)
	}
	slog.Info("chart loaded",
		"path", path,
		"notes", len(c.Notes),
		"player_notes", c.PlayerNotes(),
		"skipped", c.Skipped,
		"duration_s", c.Duration(),
	)
	return c, nil
}

// Parse reads a chart. Rows that cannot be parsed are logged and skipped.
func Parse(r io.Reader) (Chart, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Chart{}, ErrMissingHeader
	}
	if err != nil {
		return Chart{}, fmt.Errorf("read header: %w", err)
	}
	if !isHeader(header) {
		return Chart{}, fmt.Errorf("%w: got %q", ErrMissingHeader, strings.Join(header, ","))
	}

	c := Chart{Notes: []ir.PlayableNote{}}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if !errors.As(err, &csvErr) {
				return Chart{}, fmt.Errorf("read chart: %w", err)
			}
			skip(&c, &ParseError{Line: csvErr.Line, Err: csvErr.Err})
			continue
		}

		note, perr := parseRecord(record)
		if perr != nil {
			perr.Line, _ = cr.FieldPos(0)
			skip(&c, perr)
			continue
		}
		c.Notes = append(c.Notes, note)
	}
	return c, nil
}

func skip(c *Chart, err *ParseError) {
	c.Skipped++
	slog.Warn("chart row skipped", "line", err.Line, "field", err.Field, "error", err.Err)
}

func isHeader(record []string) bool {
	if len(record) != len(Header) {
		return false
	}
	for i, name := range Header {
		if !strings.EqualFold(strings.TrimSpace(record[i]), name) {
			return false
		}
	}
	return true
}

func parseRecord(record []string) (ir.PlayableNote, *ParseError) {
	if len(record) != len(Header) {
		return ir.PlayableNote{}, &ParseError{Err: fmt.Errorf("want %d fields, got %d", len(Header), len(record))}
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	var n ir.PlayableNote
	switch strings.ToLower(record[0]) {
	case "true":
		n.PlayerLane = true
	case "false":
		n.PlayerLane = false
	default:
		return n, &ParseError{Field: "user_played", Err: fmt.Errorf("want True or False, got %q", record[0])}
	}

	n.Instrument = record[1]
	if n.Instrument == "" {
		return n, &ParseError{Field: "instrument_name", Err: errors.New("empty")}
	}

	var err error
	if n.Velocity, err = strconv.ParseFloat(record[2], 64); err != nil || !finite(n.Velocity) || n.Velocity < 0 {
		return n, &ParseError{Field: "velocity", Err: numberErr(record[2], err)}
	}
	if n.Pitch, err = strconv.Atoi(record[3]); err != nil || n.Pitch < 0 || n.Pitch > 127 {
		return n, &ParseError{Field: "pitch", Err: numberErr(record[3], err)}
	}
	if n.Start, err = strconv.ParseFloat(record[4], 64); err != nil || !finite(n.Start) || n.Start < 0 {
		return n, &ParseError{Field: "start", Err: numberErr(record[4], err)}
	}
	if n.End, err = strconv.ParseFloat(record[5], 64); err != nil || !finite(n.End) || n.End < n.Start {
		return n, &ParseError{Field: "end", Err: numberErr(record[5], err)}
	}
	return n, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func numberErr(raw string, err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("out of range: %s", raw)
}

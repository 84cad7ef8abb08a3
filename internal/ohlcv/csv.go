package ohlcv

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ParseError describes why a source table could not be coerced into the
// OHLCV schema. It is the only error kind the loader produces.
type ParseError struct {
	Line int    // 1-based source line, 0 when not tied to one line
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// requiredColumns must all appear in the header row (case-insensitive).
// Additional columns are ignored.
var requiredColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// timestampLayouts are tried in order. Day-first forms come before month-first
// ones so that ambiguous dates like 03/04/2021 resolve to 3 April 2021, while
// unambiguous month-first dates (12/31/2021) still parse via the fallbacks.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006",
	"2.1.2006",
	"2 Jan 2006",
	"2 January 2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"Jan 2, 2006",
}

// ParseTimestamp parses a timestamp cell using the day-first convention.
func ParseTimestamp(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", cell)
}

// parseFloat coerces a numeric cell. Empty and NA-style cells become NaN and
// pass through; everything else must parse as a float.
func parseFloat(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "na", "nan", "null":
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Load reads CSV rows from r into a Series. It fails with a *ParseError when
// the input is not parseable as CSV, the header is missing a required column,
// or a timestamp/numeric cell cannot be coerced.
//
// Anything beyond schema coercion passes through untouched: duplicate
// timestamps, non-monotonic ordering, negative prices and empty cells (NaN)
// are all accepted, and row order is preserved exactly as read.
func Load(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, parseErrorf(0, "empty input, expected a CSV header row")
	}
	if err != nil {
		return nil, parseErrorf(0, "read header: %v", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := colIdx[name]; !ok {
			return nil, parseErrorf(1, "missing required column %q", name)
		}
	}

	series := &Series{}
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, parseErrorf(line, "read row: %v", err)
		}

		cell := func(name string) (string, bool) {
			idx := colIdx[name]
			if idx >= len(record) {
				return "", false
			}
			return record[idx], true
		}

		tsCell, ok := cell("timestamp")
		if !ok {
			return nil, parseErrorf(line, "row has no timestamp cell")
		}
		ts, err := ParseTimestamp(tsCell)
		if err != nil {
			return nil, parseErrorf(line, "timestamp: %v", err)
		}

		bar := Bar{Timestamp: ts}
		for _, field := range []struct {
			name string
			dst  *float64
		}{
			{"open", &bar.Open},
			{"high", &bar.High},
			{"low", &bar.Low},
			{"close", &bar.Close},
			{"volume", &bar.Volume},
		} {
			raw, ok := cell(field.name)
			if !ok {
				return nil, parseErrorf(line, "row has no %s cell", field.name)
			}
			v, ok := parseFloat(raw)
			if !ok {
				return nil, parseErrorf(line, "column %q: cannot coerce %q to float", field.name, raw)
			}
			*field.dst = v
		}

		series.Bars = append(series.Bars, bar)
	}

	return series, nil
}

// LoadFile loads a CSV file from disk. The series Source is set to the file's
// base name for display.
func LoadFile(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	series, err := Load(f)
	if err != nil {
		return nil, err
	}
	series.Source = filepath.Base(path)
	return series, nil
}

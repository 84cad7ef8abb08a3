package ohlcv

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestLoad_RowCountAndOrder(t *testing.T) {
	// Rows deliberately not in timestamp order: the loader must keep input
	// order rather than sorting.
	input := `timestamp,open,high,low,close,volume
03/04/2021,100,110,95,105,1000
01/04/2021,105,115,100,112,1100
02/04/2021,112,120,108,118,1200
04/04/2021,118,125,115,120,1300
`
	series, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if series.Len() != 4 {
		t.Fatalf("Load returned %d rows, want 4", series.Len())
	}

	wantDays := []int{3, 1, 2, 4}
	for i, day := range wantDays {
		if got := series.Bars[i].Timestamp.Day(); got != day {
			t.Errorf("row %d day = %d, want %d (input order must be preserved)", i, got, day)
		}
	}
	if series.Bars[0].Open != 100 || series.Bars[0].Volume != 1000 {
		t.Errorf("row 0 = %+v, want open=100 volume=1000", series.Bars[0])
	}
}

func TestLoad_DayFirstTimestamps(t *testing.T) {
	tests := []struct {
		name  string
		cell  string
		want  time.Time
	}{
		{"ambiguous slash", "03/04/2021", time.Date(2021, 4, 3, 0, 0, 0, 0, time.UTC)},
		{"ambiguous dash", "03-04-2021", time.Date(2021, 4, 3, 0, 0, 0, 0, time.UTC)},
		{"day first with time", "03/04/2021 15:30", time.Date(2021, 4, 3, 15, 30, 0, 0, time.UTC)},
		{"iso date", "2021-04-03", time.Date(2021, 4, 3, 0, 0, 0, 0, time.UTC)},
		{"iso datetime", "2021-04-03 09:15:00", time.Date(2021, 4, 3, 9, 15, 0, 0, time.UTC)},
		{"unambiguous month first", "12/31/2021", time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"day beyond 12", "31/12/2021", time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.cell)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.cell, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestLoad_MissingVolumeColumn(t *testing.T) {
	input := `timestamp,open,high,low,close
03/04/2021,100,110,95,105
`
	series, err := Load(strings.NewReader(input))
	if series != nil {
		t.Error("Load should not return a series on schema failure")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load error = %v, want *ParseError", err)
	}
	if !strings.Contains(pe.Msg, "volume") {
		t.Errorf("ParseError = %q, want it to name the missing column", pe.Msg)
	}
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			"empty input",
			"",
		},
		{
			"missing timestamp column",
			"open,high,low,close,volume\n100,110,95,105,1000\n",
		},
		{
			"uncoercible number",
			"timestamp,open,high,low,close,volume\n03/04/2021,abc,110,95,105,1000\n",
		},
		{
			"unparseable timestamp",
			"timestamp,open,high,low,close,volume\nnot-a-date,100,110,95,105,1000\n",
		},
		{
			"short row",
			"timestamp,open,high,low,close,volume\n03/04/2021,100,110\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("Load error = %v, want *ParseError", err)
			}
		})
	}
}

func TestLoad_PermissiveValidation(t *testing.T) {
	// Duplicate timestamps, non-monotonic order, negative prices and empty
	// cells are all tolerated: only schema coercion is enforced.
	input := `timestamp,open,high,low,close,volume
03/04/2021,100,110,95,105,1000
03/04/2021,100,110,95,105,1000
01/04/2021,-5,-1,-10,-2,500
02/04/2021,,110,95,105,
`
	series, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if series.Len() != 4 {
		t.Fatalf("Load returned %d rows, want 4", series.Len())
	}
	if series.Bars[2].Open != -5 {
		t.Errorf("negative price should pass through, got %v", series.Bars[2].Open)
	}
	if !math.IsNaN(series.Bars[3].Open) || !math.IsNaN(series.Bars[3].Volume) {
		t.Errorf("empty cells should load as NaN, got open=%v volume=%v",
			series.Bars[3].Open, series.Bars[3].Volume)
	}
}

func TestLoad_ExtraColumnsAndHeaderCase(t *testing.T) {
	input := `Timestamp,OPEN,High,low,Close,Volume,adj_close,notes
03/04/2021,100,110,95,105,1000,104.5,fine
`
	series, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if series.Len() != 1 {
		t.Fatalf("Load returned %d rows, want 1", series.Len())
	}
	if series.Bars[0].Close != 105 {
		t.Errorf("close = %v, want 105", series.Bars[0].Close)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")
	content := "timestamp,open,high,low,close,volume\n03/04/2021,100,110,95,105,1000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	series, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if series.Source != "sample.csv" {
		t.Errorf("Source = %q, want %q", series.Source, "sample.csv")
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("LoadFile on a missing file should return an error")
	}
}

// Property test: every well-formed N-row table loads to exactly N bars with
// the numeric cells round-tripped.
func TestProperty_LoadRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("Load keeps row count and values", prop.ForAll(
		func(prices []float64) bool {
			if len(prices) == 0 {
				return true
			}

			var sb strings.Builder
			sb.WriteString("timestamp,open,high,low,close,volume\n")
			for i, p := range prices {
				day := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
				f := strconv.FormatFloat(p, 'g', -1, 64)
				fmt.Fprintf(&sb, "%s,%s,%s,%s,%s,%s\n",
					day.Format("02/01/2006"), f, f, f, f, f)
			}

			series, err := Load(strings.NewReader(sb.String()))
			if err != nil {
				return false
			}
			if series.Len() != len(prices) {
				return false
			}
			for i, p := range prices {
				if series.Bars[i].Close != p {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0.01, 100000)),
	))

	properties.TestingRun(t)
}

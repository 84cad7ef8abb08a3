// Package ohlcv provides the OHLCV bar series model shared by the CSV loader,
// the pattern evaluator and the chart renderer.
package ohlcv

import (
	"fmt"
	"math"
	"time"
)

// Bar represents a single OHLCV candlestick row.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Body returns the absolute size of the bar body (|Close - Open|).
func (b *Bar) Body() float64 {
	return math.Abs(b.Close - b.Open)
}

// UpperShadow returns the length of the upper shadow.
func (b *Bar) UpperShadow() float64 {
	if b.Close > b.Open {
		return b.High - b.Close
	}
	return b.High - b.Open
}

// LowerShadow returns the length of the lower shadow.
func (b *Bar) LowerShadow() float64 {
	if b.Close > b.Open {
		return b.Open - b.Low
	}
	return b.Close - b.Low
}

// IsBullish returns true if the bar is bullish (Close > Open).
func (b *Bar) IsBullish() bool {
	return b.Close > b.Open
}

// IsBearish returns true if the bar is bearish (Close < Open).
func (b *Bar) IsBearish() bool {
	return b.Close < b.Open
}

// Range returns the total range of the bar (High - Low).
func (b *Bar) Range() float64 {
	return b.High - b.Low
}

// Series is an ordered sequence of bars. Bar order is exactly the order rows
// appeared in the source; the loader never re-sorts and never de-duplicates.
type Series struct {
	Bars   []Bar  `json:"bars"`
	Source string `json:"source"` // display label of where the data came from
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Clone returns a deep copy of the series. Callers that mutate a series they
// did not construct must clone it first; this is the ownership contract the
// whole pipeline relies on.
func (s *Series) Clone() *Series {
	if s == nil {
		return nil
	}
	bars := make([]Bar, len(s.Bars))
	copy(bars, s.Bars)
	return &Series{Bars: bars, Source: s.Source}
}

// Slice returns the inclusive row range [start, end] as an independent copy.
// Bounds must satisfy 0 <= start <= end <= Len()-1; anything else is a caller
// contract violation (interactive layers are expected to clamp before calling).
func (s *Series) Slice(start, end int) (*Series, error) {
	if start < 0 || end >= s.Len() || start > end {
		return nil, fmt.Errorf("slice bounds [%d, %d] out of range for %d rows", start, end, s.Len())
	}
	bars := make([]Bar, end-start+1)
	copy(bars, s.Bars[start:end+1])
	return &Series{Bars: bars, Source: s.Source}, nil
}

// Equal reports whether two series hold identical bars in identical order.
// NaN cells compare equal to NaN so that permissively loaded data can still
// be compared for copy-isolation checks.
func (s *Series) Equal(other *Series) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i := range s.Bars {
		a, b := &s.Bars[i], &other.Bars[i]
		if !a.Timestamp.Equal(b.Timestamp) {
			return false
		}
		if !floatEqual(a.Open, b.Open) || !floatEqual(a.High, b.High) ||
			!floatEqual(a.Low, b.Low) || !floatEqual(a.Close, b.Close) ||
			!floatEqual(a.Volume, b.Volume) {
			return false
		}
	}
	return true
}

func floatEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

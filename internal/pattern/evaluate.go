package pattern

import (
	"fmt"
	"math"

	"example.com/candlestick-detector/internal/ohlcv"
)

// NotFoundMessage is the informational outcome when a predicate flags
// zero rows. It is not an error.
const NotFoundMessage = "Pattern not found in this dataset."

// Result is the outcome of evaluating one pattern over one series.
type Result struct {
	Pattern Name      `json:"pattern"`
	Found   bool      `json:"found"`
	Matches []int     `json:"matches,omitempty"` // bar indexes where the pattern fired
	Marker  []float64 `json:"-"`                 // close where fired, NaN elsewhere; nil when not found
	Message string    `json:"message,omitempty"` // set when Found is false
}

// Evaluate runs the named pattern over an independent copy of the series
// and derives the marker overlay. The caller's series is never touched.
// A predicate that flags zero rows is a normal outcome, not an error;
// only an unknown name is an error.
func Evaluate(s *ohlcv.Series, name Name) (*Result, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown pattern %q", name)
	}

	if s == nil || s.Len() == 0 {
		return &Result{Pattern: name, Found: false, Message: NotFoundMessage}, nil
	}

	working := s.Clone()
	mask := fn(working)

	var matches []int
	for i := range mask {
		if mask[i] {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return &Result{Pattern: name, Found: false, Message: NotFoundMessage}, nil
	}

	// Marker overlay: defined exactly where the mask is true, aligned to
	// the series index.
	marker := make([]float64, working.Len())
	for i := range marker {
		if i < len(mask) && mask[i] {
			marker[i] = working.Bars[i].Close
		} else {
			marker[i] = math.NaN()
		}
	}

	return &Result{
		Pattern: name,
		Found:   true,
		Matches: matches,
		Marker:  marker,
	}, nil
}

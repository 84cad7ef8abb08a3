// Package history persists detection outcomes for the dashboard's
// recent-activity feed.
package history

import (
	"time"

	"github.com/google/uuid"

	"example.com/candlestick-detector/internal/pattern"
)

// Event is one recorded detection outcome.
type Event struct {
	ID         string            `json:"id"`
	Source     string            `json:"source"` // dataset the detection ran against
	Pattern    pattern.Name      `json:"pattern"`
	Direction  pattern.Direction `json:"direction"`
	Found      bool              `json:"found"`
	Matches    int               `json:"matches"`
	Rows       int               `json:"rows"`        // rows scanned, after any slicing
	DurationMS int64             `json:"duration_ms"` // evaluate plus render
	DetectedAt time.Time         `json:"detected_at"`
}

// NewEvent builds an event from an evaluation result.
func NewEvent(source string, rows int, elapsed time.Duration, result *pattern.Result) Event {
	direction := pattern.DirectionNeutral
	if info, ok := pattern.GetInfo(result.Pattern); ok {
		direction = info.Direction
	}
	return Event{
		ID:         uuid.NewString(),
		Source:     source,
		Pattern:    result.Pattern,
		Direction:  direction,
		Found:      result.Found,
		Matches:    len(result.Matches),
		Rows:       rows,
		DurationMS: elapsed.Milliseconds(),
		DetectedAt: time.Now().UTC(),
	}
}

// Recorder persists detection events. An empty patternFilter matches
// every pattern.
type Recorder interface {
	Record(evt Event) error
	Recent(limit int, patternFilter string) ([]Event, error)
	Count() (int, error)
	Close() error
}

package history

import "sync"

// defaultMemoryCap bounds the in-memory feed when no database is configured.
const defaultMemoryCap = 1000

// MemoryRecorder keeps the newest events in a capped slice. It serves the
// history endpoint when no SQLite path is configured; events do not survive
// a restart.
type MemoryRecorder struct {
	mu     sync.RWMutex
	max    int
	events []Event
}

// NewMemoryRecorder returns a recorder holding at most max events.
// max <= 0 selects the default capacity.
func NewMemoryRecorder(max int) *MemoryRecorder {
	if max <= 0 {
		max = defaultMemoryCap
	}
	return &MemoryRecorder{max: max}
}

func (r *MemoryRecorder) Record(evt Event) error {
	r.mu.Lock()
	r.events = append(r.events, evt)
	if len(r.events) > r.max {
		r.events = r.events[len(r.events)-r.max:]
	}
	r.mu.Unlock()
	return nil
}

// Recent returns the newest events first, optionally narrowed to one
// pattern name. Order is insertion order reversed.
func (r *MemoryRecorder) Recent(limit int, patternFilter string) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]Event, 0, min(limit, len(r.events)))
	for i := len(r.events) - 1; i >= 0 && len(res) < limit; i-- {
		evt := r.events[i]
		if patternFilter != "" && string(evt.Pattern) != patternFilter {
			continue
		}
		res = append(res, evt)
	}
	return res, nil
}

func (r *MemoryRecorder) Count() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events), nil
}

func (r *MemoryRecorder) Close() error { return nil }

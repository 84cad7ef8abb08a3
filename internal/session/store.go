// Package session holds per-browser state across interaction cycles: the
// loaded dataset and the most recently rendered chart.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"example.com/candlestick-detector/internal/ohlcv"
	"example.com/candlestick-detector/internal/pattern"
)

// DefaultTTL is how long an idle session survives before the sweep
// removes it.
const DefaultTTL = 2 * time.Hour

// ChartState is the most recently produced render for a session. It is
// created on the first successful detection and replaced on each
// subsequent one, so redraw cycles keep showing the last chart.
type ChartState struct {
	PNG        []byte
	Caption    string
	Filename   string
	Pattern    pattern.Name
	Bars       []ohlcv.Bar // exact rows the chart was rendered from
	Marker     []float64   // aligned overlay, kept for interactive re-renders
	Matches    int
	RenderedAt time.Time
}

type sessionState struct {
	id       string
	series   *ohlcv.Series
	chart    *ChartState
	lastSeen time.Time
	created  time.Time
}

// Store manages all live sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
	logger   zerolog.Logger
}

// NewStore creates an empty session store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*sessionState),
		logger:   logger.With().Str("component", "session").Logger(),
	}
}

// NewID returns a fresh session identifier for the cookie.
func NewID() string {
	return uuid.NewString()
}

// getOrCreate returns the session for an id, creating it if needed.
// Caller must hold the write lock.
func (s *Store) getOrCreate(id string) *sessionState {
	sess, ok := s.sessions[id]
	if !ok {
		now := time.Now()
		sess = &sessionState{id: id, lastSeen: now, created: now}
		s.sessions[id] = sess
	}
	return sess
}

// Touch marks the session as active, creating it on first contact.
func (s *Store) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(id).lastSeen = time.Now()
}

// SetSeries stores a freshly loaded dataset for the session. The store
// keeps its own copy; the caller's series stays untouched.
func (s *Store) SetSeries(id string, series *ohlcv.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(id)
	sess.series = series.Clone()
	sess.lastSeen = time.Now()
}

// Series returns a deep copy of the session's loaded dataset.
func (s *Store) Series(id string) (*ohlcv.Series, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.series == nil {
		return nil, false
	}
	sess.lastSeen = time.Now()
	return sess.series.Clone(), true
}

// Remember stores the most recent successful render, replacing any prior
// one.
func (s *Store) Remember(id string, chart ChartState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreate(id)
	stored := chart
	stored.PNG = append([]byte(nil), chart.PNG...)
	stored.Bars = append([]ohlcv.Bar(nil), chart.Bars...)
	stored.Marker = append([]float64(nil), chart.Marker...)
	sess.chart = &stored
	sess.lastSeen = time.Now()
}

// Current returns a copy of the last stored render, or false when the
// session has not produced one yet.
func (s *Store) Current(id string) (ChartState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.chart == nil {
		return ChartState{}, false
	}
	sess.lastSeen = time.Now()

	chart := *sess.chart
	chart.PNG = append([]byte(nil), sess.chart.PNG...)
	chart.Bars = append([]ohlcv.Bar(nil), sess.chart.Bars...)
	chart.Marker = append([]float64(nil), sess.chart.Marker...)
	return chart, true
}

// Info is the per-session view served to the dashboard.
type Info struct {
	HasData   bool      `json:"has_data"`
	Source    string    `json:"source,omitempty"`
	Rows      int       `json:"rows"`
	HasChart  bool      `json:"has_chart"`
	Caption   string    `json:"caption,omitempty"`
	Pattern   string    `json:"pattern,omitempty"`
	Matches   int       `json:"matches"`
	CreatedAt time.Time `json:"created_at"`
}

// Info reports the session's current state without copying bar data.
func (s *Store) Info(id string) Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Info{}
	}

	info := Info{CreatedAt: sess.created}
	if sess.series != nil {
		info.HasData = true
		info.Source = sess.series.Source
		info.Rows = sess.series.Len()
	}
	if sess.chart != nil {
		info.HasChart = true
		info.Caption = sess.chart.Caption
		info.Pattern = string(sess.chart.Pattern)
		info.Matches = sess.chart.Matches
	}
	return info
}

// CleanupStale removes sessions idle for longer than staleThreshold.
// Returns the number of sessions removed.
func (s *Store) CleanupStale(staleThreshold time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0

	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > staleThreshold {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Int("remaining", len(s.sessions)).
			Msg("stale sessions removed")
	}
	return removed
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stats summarizes the store for the status feed.
type Stats struct {
	Sessions int `json:"sessions"`
	Loaded   int `json:"loaded"`
	Charts   int `json:"charts"`
}

// Stats counts sessions, loaded datasets and rendered charts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Sessions: len(s.sessions)}
	for _, sess := range s.sessions {
		if sess.series != nil {
			stats.Loaded++
		}
		if sess.chart != nil {
			stats.Charts++
		}
	}
	return stats
}

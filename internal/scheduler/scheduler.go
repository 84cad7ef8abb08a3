// Package scheduler runs the background maintenance jobs: sweeping stale
// sessions and rescanning the example corpus.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"example.com/candlestick-detector/internal/corpus"
	"example.com/candlestick-detector/internal/metrics"
	"example.com/candlestick-detector/internal/session"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	cron    *cron.Cron
	store   *session.Store
	library *corpus.Library
	metrics *metrics.Metrics
	ttl     time.Duration
	logger  zerolog.Logger
}

// New creates a scheduler. Jobs are registered with RegisterAll and start
// running after Start.
func New(store *session.Store, library *corpus.Library, m *metrics.Metrics, ttl time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		store:   store,
		library: library,
		metrics: m,
		ttl:     ttl,
		logger:  logger.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the session sweep and corpus rescan jobs. Specs use
// the six-field form with a seconds column.
func (s *Scheduler) RegisterAll(sweepCron, rescanCron string) error {
	if _, err := s.cron.AddFunc(sweepCron, s.sweepSessions); err != nil {
		return fmt.Errorf("register session sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(rescanCron, s.rescanCorpus); err != nil {
		return fmt.Errorf("register corpus rescan: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) sweepSessions() {
	removed := s.store.CleanupStale(s.ttl)
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("stale sessions swept")
	}
	s.metrics.ActiveSessions.Set(float64(s.store.Count()))
}

func (s *Scheduler) rescanCorpus() {
	if err := s.library.Rescan(); err != nil {
		s.logger.Error().Err(err).Msg("corpus rescan failed")
	}
}

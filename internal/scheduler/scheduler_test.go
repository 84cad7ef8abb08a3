package scheduler

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"example.com/candlestick-detector/internal/corpus"
	"example.com/candlestick-detector/internal/metrics"
	"example.com/candlestick-detector/internal/session"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	store := session.NewStore(zerolog.Nop())
	library := corpus.NewLibrary(t.TempDir(), zerolog.Nop())
	return New(store, library, metrics.New(), time.Hour, zerolog.Nop())
}

func TestRegisterAll(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.RegisterAll("0 */5 * * * *", "0 0 * * * *"); err != nil {
		t.Fatalf("RegisterAll() error: %v", err)
	}
}

func TestRegisterAll_BadSpec(t *testing.T) {
	s := newTestScheduler(t)
	if err := s.RegisterAll("not a cron spec", "0 0 * * * *"); err == nil {
		t.Error("RegisterAll() with bad sweep spec expected error, got nil")
	}

	s = newTestScheduler(t)
	if err := s.RegisterAll("0 */5 * * * *", "nope"); err == nil {
		t.Error("RegisterAll() with bad rescan spec expected error, got nil")
	}
}

func TestSweepSessions_UpdatesGauge(t *testing.T) {
	s := newTestScheduler(t)
	s.store.Touch("a")
	s.store.Touch("b")

	s.sweepSessions()

	if got := testutil.ToFloat64(s.metrics.ActiveSessions); got != 2 {
		t.Errorf("active sessions gauge = %v, want 2", got)
	}
}

func TestRescanCorpus(t *testing.T) {
	s := newTestScheduler(t)
	// Empty directory scans cleanly.
	s.rescanCorpus()
	if got := len(s.library.List()); got != 0 {
		t.Errorf("List() after rescan = %d files, want 0", got)
	}
}

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_IsReentrant(t *testing.T) {
	// Each set lives on its own registry, so building twice must not panic.
	_ = New()
	_ = New()
}

func TestObserveDetection(t *testing.T) {
	m := New()

	m.ObserveDetection("Doji", true, 0.002)
	m.ObserveDetection("Doji", true, 0.001)
	m.ObserveDetection("Hammer", false, 0.003)

	if got := testutil.ToFloat64(m.DetectionsTotal.WithLabelValues("Doji", "found")); got != 2 {
		t.Errorf("detections{Doji,found} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DetectionsTotal.WithLabelValues("Hammer", "not_found")); got != 1 {
		t.Errorf("detections{Hammer,not_found} = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.UploadsTotal.Inc()
	m.ActiveSessions.Set(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("metrics handler status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"detector_uploads_total 1",
		"detector_active_sessions 3",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

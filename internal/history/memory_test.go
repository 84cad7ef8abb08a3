package history

import (
	"fmt"
	"testing"
	"time"

	"example.com/candlestick-detector/internal/pattern"
)

func TestMemoryRecorder_RecordAndRecent(t *testing.T) {
	r := NewMemoryRecorder(0)

	base := time.Date(2021, 4, 3, 12, 0, 0, 0, time.UTC)
	names := []pattern.Name{pattern.Hammer, pattern.Doji, pattern.Hammer}
	for i, name := range names {
		if err := r.Record(makeEvent("sample.csv", name, true, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	recent, err := r.Recent(10, "")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent returned %d events, want 3", len(recent))
	}
	// Newest first, by insertion order.
	if recent[0].Pattern != pattern.Hammer || recent[1].Pattern != pattern.Doji {
		t.Errorf("Recent order = %s, %s, %s", recent[0].Pattern, recent[1].Pattern, recent[2].Pattern)
	}

	filtered, err := r.Recent(10, "Doji")
	if err != nil {
		t.Fatalf("filtered Recent failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Pattern != pattern.Doji {
		t.Errorf("filtered Recent = %+v", filtered)
	}

	capped, err := r.Recent(2, "")
	if err != nil {
		t.Fatalf("limited Recent failed: %v", err)
	}
	if len(capped) != 2 {
		t.Errorf("Recent(2) returned %d events", len(capped))
	}
}

func TestMemoryRecorder_DropsOldestPastCap(t *testing.T) {
	r := NewMemoryRecorder(5)

	base := time.Date(2021, 4, 3, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		source := fmt.Sprintf("file%d.csv", i)
		if err := r.Record(makeEvent(source, pattern.Doji, false, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	count, err := r.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 5 {
		t.Fatalf("Count = %d, want 5", count)
	}

	recent, err := r.Recent(10, "")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if recent[0].Source != "file7.csv" {
		t.Errorf("newest = %s, want file7.csv", recent[0].Source)
	}
	if recent[len(recent)-1].Source != "file3.csv" {
		t.Errorf("oldest kept = %s, want file3.csv", recent[len(recent)-1].Source)
	}
}

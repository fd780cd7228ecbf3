package utils

import (
	"testing"
	"time"
)

func TestLatencyTrackerPercentile(t *testing.T) {
	tracker := NewLatencyTracker(10)
	for _, d := range []time.Duration{
		10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond,
		40 * time.Millisecond, 50 * time.Millisecond,
	} {
		tracker.Observe(d)
	}

	if tracker.Count() != 5 {
		t.Fatalf("count = %d, want 5", tracker.Count())
	}
	if p95 := tracker.Percentile(95); p95 < 40*time.Millisecond {
		t.Errorf("p95 = %v, want >= 40ms", p95)
	}
	if p0 := tracker.Percentile(0); p0 != 10*time.Millisecond {
		t.Errorf("p0 = %v, want 10ms", p0)
	}
	if p100 := tracker.Percentile(100); p100 != 50*time.Millisecond {
		t.Errorf("p100 = %v, want 50ms", p100)
	}
}

func TestLatencyTrackerBoundedSize(t *testing.T) {
	tracker := NewLatencyTracker(3)
	for i := 0; i < 10; i++ {
		tracker.Observe(time.Duration(i) * time.Millisecond)
	}
	if tracker.Count() != 3 {
		t.Fatalf("size = %d, want 3", tracker.Count())
	}
	// Oldest samples are evicted; the window holds the most recent three.
	if min := tracker.Percentile(0); min != 7*time.Millisecond {
		t.Errorf("min = %v, want 7ms", min)
	}
}

func TestLatencyTrackerEmpty(t *testing.T) {
	tracker := NewLatencyTracker(4)
	if p := tracker.Percentile(95); p != 0 {
		t.Errorf("empty tracker percentile = %v, want 0", p)
	}
}

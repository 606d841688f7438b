package liveness

import (
	"testing"
	"time"
)

func TestWatcher_ReprobesTrackedEndpoints(t *testing.T) {
	fc := &fakeChecker{respond: allAlive(1)}
	s := NewScheduler(fc, SchedulerConfig{Slots: 1, BatchSize: 10, Timeout: time.Second})
	defer s.Close()

	w, err := NewWatcher(s, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.Track(endpoints(3))
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Start(); err == nil {
		t.Fatalf("second Start succeeded")
	}

	deadline := time.Now().Add(3 * time.Second)
	for fc.callCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := fc.callCount(); got < 3 {
		t.Fatalf("calls=%d, want>=3", got)
	}
	if w.IsRunning() {
		t.Fatalf("IsRunning=true after Stop")
	}
}

func TestNewWatcher_RejectsZeroInterval(t *testing.T) {
	if _, err := NewWatcher(nil, 0, nil); err == nil {
		t.Fatalf("zero interval accepted")
	}
}

package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/san-kum/cellviz/internal/hook"
	"github.com/san-kum/cellviz/internal/logging"
	"github.com/san-kum/cellviz/internal/timeutil"
)

type recorder struct {
	mu     sync.Mutex
	events []string
	last   any
}

func (r *recorder) Send(event string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.last = payload
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestSnapshotDensity(t *testing.T) {
	tests := []struct {
		density float64
		alive   int
	}{
		{0, 0},
		{1, 12},
	}

	for _, tt := range tests {
		f := New(4, 3, tt.density, time.Second, 1)
		snap := f.Snapshot()
		if len(snap.Cells) != 12 {
			t.Fatalf("expected 12 cells, got %d", len(snap.Cells))
		}
		alive := 0
		for _, a := range snap.Cells {
			if a {
				alive++
			}
		}
		if alive != tt.alive {
			t.Errorf("density %.1f: expected %d alive, got %d", tt.density, tt.alive, alive)
		}
	}
}

func TestSnapshotDeterministic(t *testing.T) {
	a := New(5, 5, 0.5, time.Second, 42).Snapshot()
	b := New(5, 5, 0.5, time.Second, 42).Snapshot()
	for k, v := range a.Cells {
		if b.Cells[k] != v {
			t.Fatalf("same seed produced different cell %s", k)
		}
	}
}

func TestRun(t *testing.T) {
	orig := logging.Logf
	logging.SetLogger(nil)
	defer func() { logging.Logf = orig }()

	clock := timeutil.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	f := New(2, 2, 0.5, 100*time.Millisecond, 7)
	f.Clock = clock

	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx, rec) }()

	deadline := time.Now().Add(5 * time.Second)
	for rec.count() < 4 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 4 events, got %d", rec.count())
		}
		clock.Advance(100 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run returned %v", err)
	}

	if rec.events[0] != hook.EventCellCount {
		t.Errorf("first event should be %s, got %s", hook.EventCellCount, rec.events[0])
	}
	for _, ev := range rec.events[1:] {
		if ev != hook.EventCellAliveMap {
			t.Errorf("unexpected event %s", ev)
		}
	}
	if f.Sent() != len(rec.events)-1 {
		t.Errorf("sent %d, recorded %d snapshots", f.Sent(), len(rec.events)-1)
	}
}

func TestRunRejectsZeroPeriod(t *testing.T) {
	f := New(1, 1, 0.5, 0, 1)
	if err := f.Run(context.Background(), &recorder{}); err == nil {
		t.Error("expected error for zero period")
	}
}

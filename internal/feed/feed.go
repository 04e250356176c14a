// Package feed plays the host side of the visualization with random
// aliveness snapshots. It does not run any automaton rules.
package feed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/cellviz/internal/grid"
	"github.com/san-kum/cellviz/internal/hook"
	"github.com/san-kum/cellviz/internal/logging"
	"github.com/san-kum/cellviz/internal/timeutil"
)

// Sink receives the events the feed produces.
type Sink interface {
	Send(event string, payload any) error
}

// SinkFunc adapts a function such as host.Local.Dispatch or
// wsock.Server.Broadcast to Sink.
type SinkFunc func(event string, payload any) error

func (f SinkFunc) Send(event string, payload any) error { return f(event, payload) }

type Feeder struct {
	Width   int
	Height  int
	Density float64
	Period  time.Duration
	Clock   timeutil.Clock

	rng  *rand.Rand
	sent int
}

func New(width, height int, density float64, period time.Duration, seed int64) *Feeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Feeder{
		Width:   width,
		Height:  height,
		Density: density,
		Period:  period,
		Clock:   timeutil.RealClock{},
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Snapshot draws a full aliveness map where each cell is alive with
// probability Density.
func (f *Feeder) Snapshot() hook.AliveMap {
	cells := make(map[string]bool, f.Width*f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			cells[grid.Key(x, y)] = f.rng.Float64() < f.Density
		}
	}
	return hook.AliveMap{Cells: cells}
}

// Sent returns the number of snapshots delivered.
func (f *Feeder) Sent() int { return f.sent }

// Run announces the grid size once and then sends a snapshot every Period
// until ctx is done.
func (f *Feeder) Run(ctx context.Context, sink Sink) error {
	if f.Period <= 0 {
		return fmt.Errorf("feed: period must be positive, got %s", f.Period)
	}
	if err := sink.Send(hook.EventCellCount, hook.CellCount{W: f.Width, H: f.Height}); err != nil {
		return fmt.Errorf("feed: send %s: %w", hook.EventCellCount, err)
	}
	logging.Logf("[Feed] streaming %dx%d grid every %s", f.Width, f.Height, f.Period)

	ticker := f.Clock.NewTicker(f.Period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			if err := sink.Send(hook.EventCellAliveMap, f.Snapshot()); err != nil {
				logging.Logf("[Feed] send %s: %v", hook.EventCellAliveMap, err)
				continue
			}
			f.sent++
		}
	}
}

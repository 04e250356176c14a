// Package scheduler runs the single logical thread that owns the cell grid.
//
// Every mutation from the host is posted to the [Loop] as a closure and runs
// to completion on the loop goroutine, interleaved only between frame ticks.
// Code running inside the loop therefore needs no locking.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/san-kum/cellviz/internal/timeutil"
)

var (
	// ErrLoopRunning is returned when starting a loop that is already running.
	ErrLoopRunning = errors.New("scheduler: loop already running")

	// ErrLoopStopped is returned when starting a loop after Stop.
	ErrLoopStopped = errors.New("scheduler: loop stopped")
)

// DefaultQueueSize bounds the number of posted events waiting for the loop.
const DefaultQueueSize = 256

// TickFunc runs once per refresh. A non-nil error stops the loop.
type TickFunc func(now time.Time) error

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Loop drives TickFunc at a fixed refresh interval and serializes posted
// events with ticks.
type Loop struct {
	clock    timeutil.Clock
	interval time.Duration
	onTick   TickFunc
	events   chan func()

	mu     sync.Mutex
	state  state
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// New creates an idle loop ticking every interval.
func New(clock timeutil.Clock, interval time.Duration, onTick TickFunc) *Loop {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Loop{
		clock:    clock,
		interval: interval,
		onTick:   onTick,
		events:   make(chan func(), DefaultQueueSize),
		done:     make(chan struct{}),
	}
}

// Interval returns the refresh period.
func (l *Loop) Interval() time.Duration { return l.interval }

// Post queues fn to run on the loop goroutine. Events posted before Start are
// applied before the first tick. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Start runs the loop on a new goroutine.
func (l *Loop) Start() error {
	ctx, err := l.begin(context.Background())
	if err != nil {
		return err
	}
	go func() { l.finish(l.run(ctx)) }()
	return nil
}

// Run runs the loop on the calling goroutine until ctx is done, Stop is
// called or a tick fails. Renderers bound to the main OS thread use Run.
func (l *Loop) Run(ctx context.Context) error {
	ctx, err := l.begin(ctx)
	if err != nil {
		return err
	}
	err = l.run(ctx)
	l.finish(err)
	return err
}

func (l *Loop) begin(parent context.Context) (context.Context, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case stateRunning:
		return nil, ErrLoopRunning
	case stateStopped:
		return nil, ErrLoopStopped
	}
	ctx, cancel := context.WithCancel(parent)
	l.cancel = cancel
	l.state = stateRunning
	return ctx, nil
}

func (l *Loop) finish(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
	l.state = stateStopped
	if l.cancel != nil {
		l.cancel()
	}
	close(l.done)
}

func (l *Loop) run(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.events:
			fn()
		case now := <-ticker.C():
			l.drain()
			if ctx.Err() != nil {
				return nil
			}
			if l.onTick == nil {
				continue
			}
			if err := l.onTick(now); err != nil {
				return err
			}
		}
	}
}

// drain applies every event already queued so the tick observes them.
func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.events:
			fn()
		default:
			return
		}
	}
}

// Stop cancels the pending tick and waits for the loop to exit. It is safe
// to call repeatedly and without a prior Start. It must not be called from
// inside a tick or posted event.
func (l *Loop) Stop() {
	l.mu.Lock()
	switch l.state {
	case stateIdle:
		l.state = stateStopped
		close(l.done)
		l.mu.Unlock()
		return
	case stateStopped:
		l.mu.Unlock()
		return
	}
	cancel := l.cancel
	l.mu.Unlock()

	cancel()
	<-l.done
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Err returns the tick error that stopped the loop, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

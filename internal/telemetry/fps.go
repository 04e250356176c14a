// Package telemetry measures the rendered frame rate and reports it to the host.
package telemetry

import (
	"math"
	"time"

	"github.com/san-kum/cellviz/internal/logging"
	"github.com/san-kum/cellviz/internal/timeutil"
)

// Window is the FPS measurement period.
const Window = time.Second

// Emitter receives one FPS sample per elapsed window. EmitFPS runs on the
// frame loop and must not block on I/O.
type Emitter interface {
	EmitFPS(fps float64) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(fps float64) error

func (f EmitterFunc) EmitFPS(fps float64) error { return f(fps) }

// ComputeFPS returns frames per second over elapsed, rounded to two
// decimal places.
func ComputeFPS(frames int, elapsed time.Duration) float64 {
	ms := float64(elapsed) / float64(time.Millisecond)
	if ms <= 0 {
		return 0
	}
	return math.Round(float64(frames)*1000/ms*100) / 100
}

// Reporter counts frames and emits an FPS sample once per Window of wall
// clock time, not once per frame.
type Reporter struct {
	clock       timeutil.Clock
	emit        Emitter
	history     *History
	frames      int
	windowStart time.Time
	last        float64
}

// NewReporter starts the first window at clock.Now(). emit may be nil.
func NewReporter(clock timeutil.Clock, emit Emitter) *Reporter {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Reporter{clock: clock, emit: emit, windowStart: clock.Now()}
}

// WithHistory records every emitted sample into h.
func (r *Reporter) WithHistory(h *History) *Reporter {
	r.history = h
	return r
}

// FrameRendered counts one frame. When the current window has elapsed it
// computes and emits the sample, then starts a new window.
func (r *Reporter) FrameRendered() (float64, bool) {
	r.frames++
	now := r.clock.Now()
	elapsed := now.Sub(r.windowStart)
	if elapsed < Window {
		return 0, false
	}

	fps := ComputeFPS(r.frames, elapsed)
	r.last = fps
	if r.history != nil {
		r.history.Push(fps)
	}
	if r.emit != nil {
		if err := r.emit.EmitFPS(fps); err != nil {
			logging.Logf("[Telemetry] emit fps %.2f: %v", fps, err)
		}
	}

	r.frames = 0
	r.windowStart = now
	return fps, true
}

// Last returns the most recent sample, or 0 before the first window closes.
func (r *Reporter) Last() float64 { return r.last }

// Reset starts a new window at the current time.
func (r *Reporter) Reset() {
	r.frames = 0
	r.windowStart = r.clock.Now()
}

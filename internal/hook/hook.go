// Package hook binds the cell grid visualization to its host: it registers
// the inbound state events, drives the frame loop and reports FPS back.
package hook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/san-kum/cellviz/internal/anim"
	"github.com/san-kum/cellviz/internal/grid"
	"github.com/san-kum/cellviz/internal/host"
	"github.com/san-kum/cellviz/internal/logging"
	"github.com/san-kum/cellviz/internal/render"
	"github.com/san-kum/cellviz/internal/scene"
	"github.com/san-kum/cellviz/internal/scheduler"
	"github.com/san-kum/cellviz/internal/telemetry"
	"github.com/san-kum/cellviz/internal/timeutil"
)

// ErrMounted is returned when mounting a hook twice.
var ErrMounted = errors.New("hook: already mounted")

// Options configures a Hook. Zero values fall back to defaults.
type Options struct {
	Clock       timeutil.Clock
	TargetFPS   int
	Rig         anim.CameraRig
	HueStep     float64
	CellSize    float64
	Setup       scene.Setup
	CameraStart scene.Vec3
	HistorySize int
	MaxCells    int
}

// DefaultOptions returns the stock visualization settings.
func DefaultOptions() Options {
	return Options{
		Clock:       timeutil.RealClock{},
		TargetFPS:   60,
		Rig:         anim.DefaultRig(),
		HueStep:     anim.DefaultHueStep,
		CellSize:    grid.DefaultCellSize,
		Setup:       scene.DefaultSetup(),
		CameraStart: scene.Vec3{X: 1, Y: anim.DefaultBaseHeight, Z: 6},
		HistorySize: 120,
		MaxCells:    grid.DefaultMaxCells,
	}
}

// Hook owns the grid model, scene and camera. Every field below is touched
// only from the frame loop goroutine once mounted.
type Hook struct {
	opts     Options
	renderer render.Renderer
	host     host.Host

	model    *grid.Model
	scene    *scene.Scene
	camera   *scene.Camera
	engine   *anim.Engine
	reporter *telemetry.Reporter
	history  *telemetry.History
	loop     *scheduler.Loop
	started  time.Time
	ready    chan struct{}

	// outbound FPS samples; only the newest unsent one is kept
	fpsOut   chan float64
	sendQuit chan struct{}
	sendWG   sync.WaitGroup

	mu          sync.Mutex
	mounted     bool
	initialized bool
	closed      bool
}

// New builds an unmounted hook drawing into r.
func New(r render.Renderer, opts Options) *Hook {
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if opts.TargetFPS <= 0 {
		opts.TargetFPS = 60
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = 120
	}
	if opts.MaxCells <= 0 {
		opts.MaxCells = grid.DefaultMaxCells
	}
	if r == nil {
		r = &render.Nop{}
	}

	h := &Hook{
		opts:     opts,
		renderer: r,
		model:    grid.NewModel(opts.CellSize),
		scene:    scene.New(opts.Setup),
		camera:   scene.NewCamera(opts.CameraStart.X, opts.CameraStart.Y, opts.CameraStart.Z),
		engine:   anim.New(opts.Rig, opts.HueStep),
		history:  telemetry.NewHistory(opts.HistorySize),
		ready:    make(chan struct{}),
		fpsOut:   make(chan float64, 1),
		sendQuit: make(chan struct{}),
	}
	h.reporter = telemetry.NewReporter(opts.Clock, h).WithHistory(h.history)
	h.loop = scheduler.New(opts.Clock, time.Second/time.Duration(opts.TargetFPS), h.tick)
	return h
}

// Mount bootstraps the renderer, registers the inbound handlers on hst and
// starts the frame loop on its own goroutine.
func (h *Hook) Mount(hst host.Host) error {
	if err := h.mount(hst); err != nil {
		return err
	}
	if err := h.loop.Start(); err != nil {
		h.Unmount()
		return fmt.Errorf("start frame loop: %w", err)
	}
	return nil
}

// Run mounts the hook and runs the frame loop on the calling goroutine
// until ctx is done or the display is closed. It always unmounts.
func (h *Hook) Run(ctx context.Context, hst host.Host) error {
	defer h.Unmount()
	if err := h.mount(hst); err != nil {
		return err
	}
	err := h.loop.Run(ctx)
	if errors.Is(err, render.ErrDisplayClosed) {
		return nil
	}
	return err
}

func (h *Hook) mount(hst host.Host) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mounted {
		return ErrMounted
	}
	select {
	case <-h.loop.Done():
		return fmt.Errorf("mount: %w", scheduler.ErrLoopStopped)
	default:
	}
	if err := h.renderer.Init(h.opts.Setup); err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	h.initialized = true
	h.mounted = true
	h.host = hst
	h.started = h.opts.Clock.Now()
	h.reporter.Reset()

	if hst != nil {
		hst.HandleEvent(EventCellCount, h.handleCellCount)
		hst.HandleEvent(EventCellAliveMap, h.handleAliveMap)
		h.sendWG.Add(1)
		go h.sendLoop(hst)
	}
	close(h.ready)
	return nil
}

// Mounted is closed once the inbound handlers are registered. Transports
// should not deliver events before then.
func (h *Hook) Mounted() <-chan struct{} { return h.ready }

// Unmount stops the frame loop and the FPS sender, then releases the
// renderer. It waits for a push already in flight. It is idempotent and
// safe before Mount.
func (h *Hook) Unmount() {
	h.loop.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || !h.initialized {
		return
	}
	h.closed = true
	close(h.sendQuit)
	h.sendWG.Wait()
	if err := h.renderer.Close(); err != nil {
		logging.Logf("[Hook] close renderer: %v", err)
	}
}

// Done is closed once the frame loop has stopped.
func (h *Hook) Done() <-chan struct{} { return h.loop.Done() }

// Err returns the error that stopped the frame loop, if any.
func (h *Hook) Err() error { return h.loop.Err() }

func (h *Hook) handleCellCount(payload json.RawMessage) {
	var c CellCount
	if err := json.Unmarshal(payload, &c); err != nil {
		logging.Logf("[Hook] dropping %s: %v", EventCellCount, err)
		return
	}
	h.loop.Post(func() { h.OnGridSize(c) })
}

func (h *Hook) handleAliveMap(payload json.RawMessage) {
	var m AliveMap
	if err := json.Unmarshal(payload, &m); err != nil {
		logging.Logf("[Hook] dropping %s: %v", EventCellAliveMap, err)
		return
	}
	h.loop.Post(func() { h.OnAlivenessSnapshot(m) })
}

// OnGridSize rebuilds the grid. Sizes above Options.MaxCells are dropped and
// the current grid is kept. It must run on the frame loop.
func (h *Hook) OnGridSize(c CellCount) {
	if !grid.Fits(c.W, c.H, h.opts.MaxCells) {
		logging.Logf("[Hook] dropping %s %dx%d: over %d cells", EventCellCount, c.W, c.H, h.opts.MaxCells)
		return
	}
	h.model.Rebuild(c.W, c.H, h.scene)
	logging.Logf("[Hook] grid rebuilt: %dx%d (%d cells)", h.model.Width(), h.model.Height(), h.model.Len())
}

// OnAlivenessSnapshot merges a snapshot into the grid. It must run on the
// frame loop.
func (h *Hook) OnAlivenessSnapshot(m AliveMap) {
	applied := h.model.MergeAliveness(m.Cells)
	ignored := len(m.Cells) - applied
	if ignored == 0 {
		return
	}
	for k := range m.Cells {
		if _, ok := h.model.Get(k); ok {
			continue
		}
		x, y := grid.ParseKey(k)
		logging.Logf("[Hook] ignored %d snapshot keys outside %dx%d grid (e.g. %q -> %d,%d)",
			ignored, h.model.Width(), h.model.Height(), k, x, y)
		break
	}
}

// Inspect runs fn on the frame loop and waits for it to return. It reports
// false if the loop has stopped. Calling it before Mount blocks until the
// loop starts.
func (h *Hook) Inspect(fn func(m *grid.Model, cam *scene.Camera)) bool {
	done := make(chan struct{})
	if !h.loop.Post(func() {
		defer close(done)
		fn(h.model, h.camera)
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-h.loop.Done():
		return false
	}
}

// EmitFPS hands an updateFps sample to the sender goroutine and returns
// without waiting for the host. A sample the host has not taken yet is
// replaced by the newer one.
func (h *Hook) EmitFPS(fps float64) error {
	if h.host == nil {
		return nil
	}
	for {
		select {
		case h.fpsOut <- fps:
			return nil
		default:
		}
		select {
		case <-h.fpsOut:
		default:
		}
	}
}

// sendLoop pushes queued FPS samples to hst until Unmount.
func (h *Hook) sendLoop(hst host.Host) {
	defer h.sendWG.Done()
	for {
		select {
		case <-h.sendQuit:
			return
		case fps := <-h.fpsOut:
			if err := hst.PushEvent(EventUpdateFps, FPS{FPS: fps}); err != nil {
				logging.Logf("[Hook] push %s: %v", EventUpdateFps, err)
			}
		}
	}
}

func (h *Hook) tick(time.Time) error {
	elapsed := h.opts.Clock.Since(h.started)
	h.engine.Step(h.model, h.camera, elapsed)

	stats := render.Stats{
		FPS:        h.reporter.Last(),
		FPSHistory: h.history.Values(),
		Width:      h.model.Width(),
		Height:     h.model.Height(),
		Cells:      h.model.Len(),
		Alive:      h.model.AliveCount(),
		Elapsed:    elapsed,
	}
	if err := h.renderer.Render(h.scene, h.camera, stats); err != nil {
		return err
	}

	h.reporter.FrameRendered()
	return nil
}

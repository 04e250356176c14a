// Package render defines the output device the frame loop draws into.
package render

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/san-kum/cellviz/internal/scene"
)

// ErrDisplayClosed is returned by Render once the user closed the output.
var ErrDisplayClosed = errors.New("render: display closed")

// Stats is the per-frame status shown next to the scene.
type Stats struct {
	FPS        float64
	FPSHistory []float64
	Width      int
	Height     int
	Cells      int
	Alive      int
	Elapsed    time.Duration
}

// Renderer draws a scene. Render runs on the frame loop; Init and Close run
// where the hook is mounted and unmounted. Hook.Run keeps all three on one
// goroutine.
type Renderer interface {
	Init(setup scene.Setup) error
	Render(sc *scene.Scene, cam *scene.Camera, stats Stats) error
	Close() error
}

// Nop discards every frame. It is used headless and in tests.
type Nop struct {
	frames atomic.Int64
}

func (*Nop) Init(scene.Setup) error { return nil }
func (n *Nop) Render(*scene.Scene, *scene.Camera, Stats) error {
	n.frames.Add(1)
	return nil
}
func (*Nop) Close() error { return nil }

// Frames returns the number of frames rendered so far.
func (n *Nop) Frames() int64 { return n.frames.Load() }

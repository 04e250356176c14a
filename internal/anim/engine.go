// Package anim derives per-frame cell visuals and the camera orbit from grid state.
package anim

import (
	"math"
	"time"

	"github.com/san-kum/cellviz/internal/grid"
	"github.com/san-kum/cellviz/internal/scene"
)

const (
	DefaultHueStep    = 0.002
	DefaultRadius     = 10.0
	DefaultSpeed      = 0.25
	DefaultBaseHeight = 20.0

	heightDivisor = 2.5
	bobFrequency  = 0.5
	bobAmplitude  = 2.0
)

// CameraRig describes the camera orbit around the origin.
type CameraRig struct {
	Radius     float64
	Speed      float64
	BaseHeight float64
}

func DefaultRig() CameraRig {
	return CameraRig{Radius: DefaultRadius, Speed: DefaultSpeed, BaseHeight: DefaultBaseHeight}
}

// Position returns the camera position after elapsed seconds: a circle of
// Radius in the XZ plane with a slow vertical bob around BaseHeight.
func (r CameraRig) Position(elapsed float64) scene.Vec3 {
	a := elapsed * r.Speed
	return scene.Vec3{
		X: r.Radius * math.Sin(a),
		Y: r.BaseHeight + math.Sin(elapsed*bobFrequency)*bobAmplitude,
		Z: r.Radius * math.Cos(a),
	}
}

// Apply moves cam along the orbit and points it at the origin.
func (r CameraRig) Apply(cam *scene.Camera, elapsed time.Duration) {
	cam.Position = r.Position(elapsed.Seconds())
	cam.LookAt(scene.Vec3{})
}

// Height is the vertical position of a cell. Alive cells form a pyramid
// peaking at the grid centre (Manhattan distance); dead cells sit at 0.
func Height(alive bool, x, y, w, h int) float64 {
	if !alive {
		return 0
	}
	hw, hh := float64(w)/2, float64(h)/2
	distance := math.Abs(float64(x)-hw) + math.Abs(float64(y)-hh)
	return (hh - distance) / heightDivisor
}

// Engine advances the per-frame visual state of a grid.
type Engine struct {
	Rig     CameraRig
	HueStep float64
}

func New(rig CameraRig, hueStep float64) *Engine {
	if hueStep <= 0 {
		hueStep = DefaultHueStep
	}
	return &Engine{Rig: rig, HueStep: hueStep}
}

// Step runs one frame: every cell's hue advances and its material and height
// are re-derived, then the camera moves along the orbit. The camera update
// does not depend on the grid, so an empty model still orbits.
func (e *Engine) Step(m *grid.Model, cam *scene.Camera, elapsed time.Duration) {
	w, h := m.Width(), m.Height()
	m.Range(func(_ string, c *grid.Cell) bool {
		c.Hue += e.HueStep
		c.Mesh.Material = scene.CellMaterial(c.Hue, c.Alive)
		c.Mesh.Position.Y = Height(c.Alive, c.X, c.Y, w, h)
		return true
	})
	if cam != nil {
		e.Rig.Apply(cam, elapsed)
	}
}

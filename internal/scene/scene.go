package scene

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Material is the surface appearance of a mesh.
type Material struct {
	Color   colorful.Color
	Opacity float64
}

// Mesh is a renderable cube. Position is its centre.
type Mesh struct {
	Position Vec3
	Size     float64
	Material Material
}

// NewCube returns a cube mesh of the given edge length at p.
func NewCube(p Vec3, size float64) *Mesh {
	return &Mesh{Position: p, Size: size, Material: Material{Opacity: 1}}
}

// Light is a colored light source.
type Light struct {
	Color     colorful.Color
	Intensity float64
	Position  Vec3
}

// Setup holds the one-shot scene configuration shared by all renderers.
type Setup struct {
	Background    colorful.Color
	EdgeColor     colorful.Color
	Ambient       Light
	Directional   Light
	GridSize      int
	GridDivisions int
	AxesSize      float64
}

// DefaultSetup mirrors the scene the visualization has always shipped with.
func DefaultSetup() Setup {
	return Setup{
		Background:    mustHex("#1f1f2f"),
		EdgeColor:     mustHex("#7f7f7f"),
		Ambient:       Light{Color: mustHex("#afafaf"), Intensity: 1},
		Directional:   Light{Color: mustHex("#ffffff"), Intensity: 1, Position: Vec3{1, 15, 1}},
		GridSize:      50,
		GridDivisions: 50,
		AxesSize:      50,
	}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Scene is the set of meshes currently drawn.
type Scene struct {
	Setup  Setup
	meshes map[*Mesh]struct{}
}

func New(setup Setup) *Scene {
	return &Scene{Setup: setup, meshes: make(map[*Mesh]struct{})}
}

func (s *Scene) Add(m *Mesh)    { s.meshes[m] = struct{}{} }
func (s *Scene) Remove(m *Mesh) { delete(s.meshes, m) }
func (s *Scene) Len() int       { return len(s.meshes) }

// Contains reports whether m is currently part of the scene.
func (s *Scene) Contains(m *Mesh) bool {
	_, ok := s.meshes[m]
	return ok
}

// Meshes returns the meshes in no particular order.
func (s *Scene) Meshes() []*Mesh {
	out := make([]*Mesh, 0, len(s.meshes))
	for m := range s.meshes {
		out = append(out, m)
	}
	return out
}

const (
	cellSaturation = 0.95
	aliveLightness = 0.7
	deadLightness  = 0.5
	aliveOpacity   = 0.9
	deadOpacity    = 0.5
)

// CellMaterial derives a cell's material from its hue accumulator and
// aliveness. Only the fractional part of hue is used.
func CellMaterial(hue float64, alive bool) Material {
	h := hue - math.Floor(hue)
	l, a := deadLightness, deadOpacity
	if alive {
		l, a = aliveLightness, aliveOpacity
	}
	return Material{Color: colorful.Hsl(h*360, cellSaturation, l), Opacity: a}
}

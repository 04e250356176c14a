package grid

import (
	"github.com/san-kum/cellviz/internal/scene"
)

const (
	// DefaultCellSize is the edge length of a cell cube.
	DefaultCellSize = 0.8

	// DefaultMaxCells bounds the grid a host may request.
	DefaultMaxCells = 1 << 20
)

// Fits reports whether a w×h grid holds at most limit cells. It never
// computes w*h, so huge dimensions cannot overflow. Non-positive dimensions
// always fit.
func Fits(w, h, limit int) bool {
	if w <= 0 || h <= 0 {
		return true
	}
	return w <= limit/h
}

// Scene receives the meshes owned by the model.
type Scene interface {
	Add(m *scene.Mesh)
	Remove(m *scene.Mesh)
}

// Cell is one grid unit. X and Y never change after creation; Alive is
// written only by MergeAliveness and Hue only by the animation engine.
type Cell struct {
	X, Y  int
	Alive bool
	Hue   float64
	Mesh  *scene.Mesh
}

// Model maps encoded coordinates to cells. It is not safe for concurrent
// use; callers serialize access through the frame loop.
type Model struct {
	width, height int
	cellSize      float64
	cells         map[string]*Cell
}

func NewModel(cellSize float64) *Model {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Model{cellSize: cellSize, cells: make(map[string]*Cell)}
}

// Rebuild replaces every cell with a fresh w×h grid centred on the origin.
// Meshes of the previous grid are removed from sc before the new ones are
// added. Negative dimensions are treated as zero.
func (m *Model) Rebuild(w, h int, sc Scene) {
	w, h = max(w, 0), max(h, 0)

	for _, c := range m.cells {
		sc.Remove(c.Mesh)
	}

	cells := make(map[string]*Cell, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pos := scene.Vec3{
				X: float64(x) - float64(w)/2,
				Y: 0,
				Z: float64(y) - float64(h)/2,
			}
			c := &Cell{X: x, Y: y, Alive: true, Mesh: scene.NewCube(pos, m.cellSize)}
			c.Mesh.Material = scene.CellMaterial(c.Hue, c.Alive)
			sc.Add(c.Mesh)
			cells[Key(x, y)] = c
		}
	}

	m.width, m.height = w, h
	m.cells = cells
}

// MergeAliveness copies the alive flag for every key present both in
// snapshot and in the model. Unknown keys are ignored and cells missing
// from snapshot keep their state. It returns the number of cells updated.
func (m *Model) MergeAliveness(snapshot map[string]bool) int {
	applied := 0
	for key, alive := range snapshot {
		if c, ok := m.cells[key]; ok {
			c.Alive = alive
			applied++
		}
	}
	return applied
}

func (m *Model) Width() int  { return m.width }
func (m *Model) Height() int { return m.height }
func (m *Model) Len() int    { return len(m.cells) }

// Get returns the cell stored under key.
func (m *Model) Get(key string) (*Cell, bool) {
	c, ok := m.cells[key]
	return c, ok
}

// Cell returns the cell at (x, y).
func (m *Model) Cell(x, y int) (*Cell, bool) {
	return m.Get(Key(x, y))
}

// Range calls fn for every cell until fn returns false.
func (m *Model) Range(fn func(key string, c *Cell) bool) {
	for k, c := range m.cells {
		if !fn(k, c) {
			return
		}
	}
}

func (m *Model) AliveCount() int {
	n := 0
	for _, c := range m.cells {
		if c.Alive {
			n++
		}
	}
	return n
}

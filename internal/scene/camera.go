package scene

import "math"

// Camera is a perspective camera oriented with LookAt.
type Camera struct {
	Position, Target, Up Vec3
	FOV, Near, Far       float64
	// CellAspect is the width/height ratio of one output pixel. Terminal
	// character cells are roughly twice as tall as they are wide.
	CellAspect float64
}

// NewCamera returns a camera with a 75 degree vertical field of view.
func NewCamera(x, y, z float64) *Camera {
	return &Camera{
		Position:   Vec3{x, y, z},
		Up:         Vec3{0, 1, 0},
		FOV:        75 * math.Pi / 180,
		Near:       0.1,
		Far:        1000,
		CellAspect: 1,
	}
}

// LookAt orients the camera toward p.
func (c *Camera) LookAt(p Vec3) { c.Target = p }

// basis returns the right, up and forward axes of the view.
func (c *Camera) basis() (Vec3, Vec3, Vec3) {
	f := c.Target.Sub(c.Position).Normalize()
	r := f.Cross(c.Up).Normalize()
	if r == (Vec3{}) {
		// looking straight along Up; pick any perpendicular
		r = Vec3{1, 0, 0}
	}
	u := r.Cross(f)
	return r, u, f
}

// Project converts world coordinates to screen coordinates.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	if sw <= 0 || sh <= 0 {
		return 0, 0, 0, false
	}
	r, u, f := c.basis()
	d := p.Sub(c.Position)
	depth := d.Dot(f)
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	aspect := float64(sw) * c.CellAspect / float64(sh)
	focal := 1 / math.Tan(c.FOV/2)
	nx := d.Dot(r) * focal / (depth * aspect)
	ny := d.Dot(u) * focal / depth
	sx := int((nx + 1) / 2 * float64(sw))
	sy := int((1 - ny) / 2 * float64(sh))
	return sx, sy, depth, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

package scene

import "math"

type Vec3 struct {
	X, Y, Z float64
}

// Vec3 methods.
func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Normalize() Vec3 {
	if l := v.Length(); l != 0 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// CubeCorners returns the eight corners of an axis-aligned cube centred on c.
func CubeCorners(c Vec3, size float64) [8]Vec3 {
	s := size / 2
	return [8]Vec3{
		{c.X - s, c.Y - s, c.Z - s}, {c.X + s, c.Y - s, c.Z - s},
		{c.X + s, c.Y + s, c.Z - s}, {c.X - s, c.Y + s, c.Z - s},
		{c.X - s, c.Y - s, c.Z + s}, {c.X + s, c.Y - s, c.Z + s},
		{c.X + s, c.Y + s, c.Z + s}, {c.X - s, c.Y + s, c.Z + s},
	}
}

// CubeEdges indexes pairs of CubeCorners forming the twelve cube edges.
var CubeEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

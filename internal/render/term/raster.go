package term

import (
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/cellviz/internal/scene"
)

const (
	// Terminal cells are about twice as tall as wide.
	cellAspect = 0.5

	// Floor helpers lose every depth contest against geometry near them.
	helperBias = 1.0
	edgeBias   = 0.01

	minEdgeSpan = 4
)

var (
	axisX = colorful.Color{R: 1, G: 0, B: 0}
	axisY = colorful.Color{R: 0, G: 1, B: 0}
	axisZ = colorful.Color{R: 0, G: 0, B: 1}
)

// Rasterizer projects a scene into a Frame.
type Rasterizer struct {
	Setup scene.Setup
}

// Draw clears f and draws the floor grid, the axes and every mesh in sc as
// seen from cam.
func (r *Rasterizer) Draw(f *Frame, sc *scene.Scene, cam *scene.Camera) {
	f.Background = r.Setup.Background
	f.Clear()

	view := *cam
	view.CellAspect = cellAspect

	r.drawGrid(f, &view)
	r.drawAxes(f, &view)

	meshes := sc.Meshes()
	sort.Slice(meshes, func(i, j int) bool {
		return meshes[i].Position.Sub(view.Position).Length() > meshes[j].Position.Sub(view.Position).Length()
	})
	for _, m := range meshes {
		r.drawCube(f, &view, m)
	}
}

func (r *Rasterizer) drawGrid(f *Frame, cam *scene.Camera) {
	n := r.Setup.GridDivisions
	if n <= 0 || r.Setup.GridSize <= 0 {
		return
	}
	step := float64(r.Setup.GridSize) / float64(n)
	half := float64(r.Setup.GridSize) / 2
	dot := blend(r.Setup.Background, r.Setup.EdgeColor, 0.35)
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			p := scene.Vec3{X: -half + float64(i)*step, Z: -half + float64(j)*step}
			if x, y, d, ok := cam.Project(p, f.Width, f.Height); ok {
				f.Set(x, y, d+helperBias, '·', dot)
			}
		}
	}
}

func (r *Rasterizer) drawAxes(f *Frame, cam *scene.Camera) {
	if r.Setup.AxesSize <= 0 {
		return
	}
	s := r.Setup.AxesSize
	axes := []struct {
		end   scene.Vec3
		color colorful.Color
	}{
		{scene.Vec3{X: s}, axisX},
		{scene.Vec3{Y: s}, axisY},
		{scene.Vec3{Z: s}, axisZ},
	}
	for _, a := range axes {
		r.line(f, cam, scene.Vec3{}, a.end, helperBias, '•', a.color)
	}
}

func (r *Rasterizer) drawCube(f *Frame, cam *scene.Camera, m *scene.Mesh) {
	corners := scene.CubeCorners(m.Position, m.Size)
	var xs, ys [8]int
	var ds [8]float64
	for i, c := range corners {
		x, y, d, _ := cam.Project(c, f.Width, f.Height)
		if d < cam.Near || d > cam.Far {
			return
		}
		xs[i], ys[i], ds[i] = x, y, d
	}

	x0, y0, x1, y1 := xs[0], ys[0], xs[0], ys[0]
	front := ds[0]
	for i := 1; i < 8; i++ {
		x0, x1 = min(x0, xs[i]), max(x1, xs[i])
		y0, y1 = min(y0, ys[i]), max(y1, ys[i])
		front = min(front, ds[i])
	}

	fill := blend(r.Setup.Background, m.Material.Color, m.Material.Opacity)
	f.FillRect(x0, y0, x1, y1, front, shade(m.Material.Opacity), fill)

	if x1-x0 < minEdgeSpan {
		return
	}
	edge := blend(fill, r.Setup.EdgeColor, 0.8)
	for _, e := range scene.CubeEdges {
		a, b := e[0], e[1]
		f.DrawLine(xs[a], ys[a], front-edgeBias, xs[b], ys[b], front-edgeBias, '+', edge)
	}
}

func (r *Rasterizer) line(f *Frame, cam *scene.Camera, a, b scene.Vec3, bias float64, ch rune, c colorful.Color) {
	_, _, ad, _ := cam.Project(a, f.Width, f.Height)
	_, _, bd, _ := cam.Project(b, f.Width, f.Height)
	near := cam.Near * 1.01
	switch {
	case ad < near && bd < near:
		return
	case ad < near:
		a = a.Add(b.Sub(a).Scale((near - ad) / (bd - ad)))
	case bd < near:
		b = b.Add(a.Sub(b).Scale((near - bd) / (ad - bd)))
	}
	ax, ay, ad, _ := cam.Project(a, f.Width, f.Height)
	bx, by, bd, _ := cam.Project(b, f.Width, f.Height)
	f.DrawLine(ax, ay, ad+bias, bx, by, bd+bias, ch, c)
}

// blend mixes fg over bg with the given opacity.
func blend(bg, fg colorful.Color, opacity float64) colorful.Color {
	return bg.BlendRgb(fg, opacity).Clamped()
}

func shade(opacity float64) rune {
	switch {
	case opacity >= 0.8:
		return '█'
	case opacity >= 0.6:
		return '▓'
	default:
		return '▒'
	}
}

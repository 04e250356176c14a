// Package gui draws the cell grid in a raylib window. Every call must come
// from the goroutine locked to the main OS thread.
package gui

import (
	"fmt"
	"math"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/cellviz/internal/render"
	"github.com/san-kum/cellviz/internal/scene"
)

type Options struct {
	Width  int32
	Height int32
	Title  string
}

func DefaultOptions() Options {
	return Options{Width: 1280, Height: 720, Title: "cellviz"}
}

// Renderer implements render.Renderer on top of raylib.
type Renderer struct {
	opts  Options
	setup scene.Setup
	open  bool

	bg, edge, text, dim rl.Color
}

var _ render.Renderer = (*Renderer)(nil)

func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) Init(setup scene.Setup) error {
	r.setup = setup
	r.bg = toColor(setup.Background, 1)
	r.edge = toColor(setup.EdgeColor, 1)
	r.text = rl.NewColor(200, 200, 200, 255)
	r.dim = rl.NewColor(120, 120, 120, 255)

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(r.opts.Width, r.opts.Height, r.opts.Title)
	if !rl.IsWindowReady() {
		return fmt.Errorf("gui: window %dx%d not ready", r.opts.Width, r.opts.Height)
	}
	// The frame loop paces rendering; raylib's own limiter would double up.
	rl.SetTargetFPS(0)
	rl.SetExitKey(rl.KeyQ)
	r.open = true
	return nil
}

func (r *Renderer) Render(sc *scene.Scene, cam *scene.Camera, stats render.Stats) error {
	if !r.open || rl.WindowShouldClose() {
		return render.ErrDisplayClosed
	}

	camera := rl.NewCamera3D(
		toVec(cam.Position),
		toVec(cam.Target),
		toVec(cam.Up),
		float32(cam.FOV*180/math.Pi),
		rl.CameraPerspective,
	)

	meshes := sc.Meshes()
	// Back to front so translucent cubes blend over what is behind them.
	sort.Slice(meshes, func(i, j int) bool {
		return meshes[i].Position.Sub(cam.Position).Length() > meshes[j].Position.Sub(cam.Position).Length()
	})

	rl.BeginDrawing()
	rl.ClearBackground(r.bg)

	rl.BeginMode3D(camera)
	r.drawHelpers()
	for _, m := range meshes {
		pos := toVec(m.Position)
		size := float32(m.Size)
		rl.DrawCube(pos, size, size, size, toColor(m.Material.Color, m.Material.Opacity))
		rl.DrawCubeWires(pos, size, size, size, r.edge)
	}
	rl.EndMode3D()

	r.drawStats(stats)
	rl.EndDrawing()
	return nil
}

func (r *Renderer) drawHelpers() {
	if r.setup.GridDivisions > 0 && r.setup.GridSize > 0 {
		spacing := float32(r.setup.GridSize) / float32(r.setup.GridDivisions)
		rl.DrawGrid(int32(r.setup.GridDivisions), spacing)
	}
	if s := float32(r.setup.AxesSize); s > 0 {
		origin := rl.NewVector3(0, 0, 0)
		rl.DrawLine3D(origin, rl.NewVector3(s, 0, 0), rl.Red)
		rl.DrawLine3D(origin, rl.NewVector3(0, s, 0), rl.Green)
		rl.DrawLine3D(origin, rl.NewVector3(0, 0, s), rl.Blue)
	}
}

func (r *Renderer) drawStats(st render.Stats) {
	lines := []string{
		fmt.Sprintf("grid   %dx%d", st.Width, st.Height),
		fmt.Sprintf("alive  %d/%d", st.Alive, st.Cells),
		fmt.Sprintf("fps    %.2f", st.FPS),
	}
	for i, l := range lines {
		rl.DrawText(l, 16, int32(16+i*22), 20, r.text)
	}
	rl.DrawText("Q: quit", 16, int32(rl.GetScreenHeight())-30, 16, r.dim)
	r.drawHistory(st.FPSHistory)
}

// drawHistory plots the FPS samples as bars in the top right corner.
func (r *Renderer) drawHistory(values []float64) {
	if len(values) < 2 {
		return
	}
	const w, h = 240, 60
	x0 := int32(rl.GetScreenWidth()) - w - 16
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		return
	}
	bar := float32(w) / float32(len(values))
	for i, v := range values {
		bh := int32(v / peak * h)
		rl.DrawRectangle(x0+int32(float32(i)*bar), 16+h-bh, int32(math.Max(1, float64(bar)-1)), bh, r.edge)
	}
}

func (r *Renderer) Close() error {
	if r.open {
		r.open = false
		rl.CloseWindow()
	}
	return nil
}

func toVec(v scene.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

func toColor(c colorful.Color, opacity float64) rl.Color {
	cr, cg, cb := c.Clamped().RGB255()
	return rl.NewColor(cr, cg, cb, uint8(math.Round(math.Max(0, math.Min(1, opacity))*255)))
}

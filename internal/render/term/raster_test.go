package term

import (
	"strings"
	"testing"

	"github.com/san-kum/cellviz/internal/scene"
)

func newView() *scene.Camera {
	cam := scene.NewCamera(0, 10, 5)
	cam.LookAt(scene.Vec3{})
	return cam
}

func TestRasterizeCube(t *testing.T) {
	sc := scene.New(scene.DefaultSetup())
	m := scene.NewCube(scene.Vec3{}, 0.8)
	m.Material = scene.CellMaterial(0, true)
	sc.Add(m)

	r := &Rasterizer{Setup: sc.Setup}
	f := NewFrame(40, 20, sc.Setup.Background)
	r.Draw(f, sc, newView())

	if got := f.At(20, 10).Rune; got != '█' {
		t.Errorf("expected alive cube at the centre, got %q\n%s", got, f.Plain())
	}
}

func TestRasterizeDeadCubeShade(t *testing.T) {
	sc := scene.New(scene.DefaultSetup())
	m := scene.NewCube(scene.Vec3{}, 0.8)
	m.Material = scene.CellMaterial(0, false)
	sc.Add(m)

	r := &Rasterizer{Setup: sc.Setup}
	f := NewFrame(40, 20, sc.Setup.Background)
	r.Draw(f, sc, newView())

	if got := f.At(20, 10).Rune; got != '▒' {
		t.Errorf("expected translucent dead cube, got %q", got)
	}
}

func TestRasterizeEmptyScene(t *testing.T) {
	sc := scene.New(scene.DefaultSetup())
	r := &Rasterizer{Setup: sc.Setup}
	f := NewFrame(40, 20, sc.Setup.Background)
	r.Draw(f, sc, newView())

	out := f.Plain()
	if strings.ContainsRune(out, '█') {
		t.Error("empty scene should draw no cubes")
	}
	if !strings.ContainsRune(out, '·') {
		t.Error("expected the floor grid to be visible")
	}
}

func TestRasterizeBehindCamera(t *testing.T) {
	sc := scene.New(scene.DefaultSetup())
	m := scene.NewCube(scene.Vec3{Y: 20}, 0.8)
	m.Material = scene.CellMaterial(0, true)
	sc.Add(m)

	r := &Rasterizer{Setup: scene.Setup{Background: sc.Setup.Background}}
	f := NewFrame(40, 20, sc.Setup.Background)
	r.Draw(f, sc, newView())

	if strings.ContainsRune(f.Plain(), '█') {
		t.Error("cube behind the camera should not be drawn")
	}
}

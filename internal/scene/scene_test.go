package scene

import (
	"math"
	"testing"
)

func TestSceneAddRemove(t *testing.T) {
	s := New(DefaultSetup())
	a := NewCube(Vec3{}, 0.8)
	b := NewCube(Vec3{1, 0, 0}, 0.8)

	s.Add(a)
	s.Add(b)
	s.Add(a)
	if s.Len() != 2 {
		t.Fatalf("expected 2 meshes, got %d", s.Len())
	}

	s.Remove(a)
	if s.Contains(a) {
		t.Error("removed mesh still in scene")
	}
	if !s.Contains(b) {
		t.Error("expected b to remain")
	}
	if len(s.Meshes()) != 1 {
		t.Errorf("expected 1 mesh, got %d", len(s.Meshes()))
	}
}

func TestDefaultSetup(t *testing.T) {
	setup := DefaultSetup()
	if setup.Background.Hex() != "#1f1f2f" {
		t.Errorf("unexpected background %s", setup.Background.Hex())
	}
	if setup.GridSize != 50 || setup.AxesSize != 50 {
		t.Errorf("unexpected helpers: grid %d axes %.0f", setup.GridSize, setup.AxesSize)
	}
}

func TestCameraProjectCentre(t *testing.T) {
	cam := NewCamera(0, 0, 10)
	cam.LookAt(Vec3{})

	x, y, depth, ok := cam.Project(Vec3{}, 80, 40)
	if !ok {
		t.Fatal("origin should be visible")
	}
	if x != 40 || y != 20 {
		t.Errorf("expected centre (40,20), got (%d,%d)", x, y)
	}
	if math.Abs(depth-10) > 1e-9 {
		t.Errorf("expected depth 10, got %f", depth)
	}
}

func TestCameraProjectBehind(t *testing.T) {
	cam := NewCamera(0, 0, 10)
	cam.LookAt(Vec3{})

	if _, _, _, ok := cam.Project(Vec3{0, 0, 20}, 80, 40); ok {
		t.Error("point behind the camera should not be visible")
	}
}

func TestCameraProjectOrientation(t *testing.T) {
	cam := NewCamera(0, 0, 10)
	cam.LookAt(Vec3{})

	rx, _, _, _ := cam.Project(Vec3{1, 0, 0}, 80, 40)
	_, uy, _, _ := cam.Project(Vec3{0, 1, 0}, 80, 40)
	if rx <= 40 {
		t.Errorf("+X should project right of centre, got %d", rx)
	}
	if uy >= 20 {
		t.Errorf("+Y should project above centre, got %d", uy)
	}
}

func TestCubeCorners(t *testing.T) {
	c := CubeCorners(Vec3{1, 2, 3}, 2)
	if c[0] != (Vec3{0, 1, 2}) || c[6] != (Vec3{2, 3, 4}) {
		t.Errorf("unexpected corners %v", c)
	}
	for _, e := range CubeEdges {
		if d := c[e[0]].Sub(c[e[1]]).Length(); math.Abs(d-2) > 1e-9 {
			t.Errorf("edge %v has length %f", e, d)
		}
	}
}

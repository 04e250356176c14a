package term

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/cellviz/internal/render"
	"github.com/san-kum/cellviz/internal/scene"
)

func TestRendererSendsFrames(t *testing.T) {
	r := NewRenderer()
	var got []tea.Msg
	r.AttachFunc(func(m tea.Msg) { got = append(got, m) })
	if err := r.Init(scene.DefaultSetup()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	sc := scene.New(scene.DefaultSetup())
	stats := render.Stats{Width: 4, Height: 4, Cells: 16, Alive: 14}
	if err := r.Render(sc, newView(), stats); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected one frame, got %d", len(got))
	}
	fm, ok := got[0].(FrameMsg)
	if !ok {
		t.Fatalf("expected FrameMsg, got %T", got[0])
	}
	if fm.Frame.Width != defaultWidth || fm.Frame.Height != defaultHeight {
		t.Errorf("unexpected frame size %dx%d", fm.Frame.Width, fm.Frame.Height)
	}
	if fm.Stats.Alive != 14 {
		t.Errorf("stats not forwarded: %+v", fm.Stats)
	}
}

func TestRendererWithoutProgram(t *testing.T) {
	r := NewRenderer()
	if err := r.Render(scene.New(scene.DefaultSetup()), newView(), render.Stats{}); err != nil {
		t.Errorf("render without a program should be a no-op, got %v", err)
	}
}

func TestViewerResize(t *testing.T) {
	r := NewRenderer()
	v := NewViewer(r, ViewerOptions{})

	v.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	w, h := r.Size()
	if w != 120-panelWidth-2 || h != 39 {
		t.Errorf("unexpected frame size %dx%d", w, h)
	}

	v.Update(tea.WindowSizeMsg{Width: 10, Height: 0})
	if w, h := r.Size(); w != 0 || h != 0 {
		t.Errorf("tiny window should clamp to 0x0, got %dx%d", w, h)
	}
}

func TestViewerQuitClosesDisplay(t *testing.T) {
	r := NewRenderer()
	r.AttachFunc(func(tea.Msg) {})
	v := NewViewer(r, ViewerOptions{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	err := r.Render(scene.New(scene.DefaultSetup()), newView(), render.Stats{})
	if !errors.Is(err, render.ErrDisplayClosed) {
		t.Errorf("expected ErrDisplayClosed, got %v", err)
	}
}

func TestViewerShowsStats(t *testing.T) {
	r := NewRenderer()
	v := NewViewer(r, ViewerOptions{Source: "demo"})

	if !strings.Contains(v.View(), "waiting for frames") {
		t.Error("expected placeholder before the first frame")
	}

	m, _ := v.Update(FrameMsg{
		Frame: NewFrame(10, 5, scene.DefaultSetup().Background),
		Stats: render.Stats{Width: 4, Height: 4, Cells: 16, Alive: 14, FPS: 59.5, FPSHistory: []float64{58, 59.5}},
	})
	out := m.View()
	for _, want := range []string{"CELLVIZ", "demo", "4x4", "14/16", "59.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewerThemeCycle(t *testing.T) {
	v := NewViewer(NewRenderer(), ViewerOptions{Theme: "ocean"})
	m, _ := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if got := m.(Viewer).theme.Name; got != "sunset" {
		t.Errorf("expected sunset after ocean, got %s", got)
	}
}

func TestViewerSnapshot(t *testing.T) {
	var saved *Frame
	v := NewViewer(NewRenderer(), ViewerOptions{
		OnSnapshot: func(f *Frame) (string, error) {
			saved = f
			return "frame.svg", nil
		},
	})

	m, _ := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if got := m.(Viewer).status; got != "no frame yet" {
		t.Errorf("unexpected status %q", got)
	}

	frame := NewFrame(2, 2, scene.DefaultSetup().Background)
	m, _ = m.Update(FrameMsg{Frame: frame})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if saved != frame {
		t.Error("snapshot callback did not receive the current frame")
	}
	if got := m.(Viewer).status; got != "saved frame.svg" {
		t.Errorf("unexpected status %q", got)
	}
}

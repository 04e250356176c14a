// Package term draws the cell grid into the terminal with bubbletea.
package term

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cellviz/internal/render"
	"github.com/san-kum/cellviz/internal/scene"
)

const (
	panelWidth    = 40
	defaultWidth  = 60
	defaultHeight = 22
	chartWidth    = 30
	chartHeight   = 5
)

// FrameMsg carries one rendered frame from the frame loop to the viewer.
type FrameMsg struct {
	Frame *Frame
	Stats render.Stats
}

// Renderer rasterizes frames on the frame loop and hands them to a
// bubbletea program.
type Renderer struct {
	raster Rasterizer

	mu     sync.Mutex
	send   func(tea.Msg)
	width  int
	height int

	closed    chan struct{}
	closeOnce sync.Once
}

var _ render.Renderer = (*Renderer)(nil)

func NewRenderer() *Renderer {
	return &Renderer{
		width:  defaultWidth,
		height: defaultHeight,
		closed: make(chan struct{}),
	}
}

// Attach routes frames to p. Call it before the frame loop starts.
func (r *Renderer) Attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = p.Send
}

// AttachFunc routes frames to send.
func (r *Renderer) AttachFunc(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = send
}

// Resize sets the frame size in character cells.
func (r *Renderer) Resize(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = max(w, 0), max(h, 0)
}

// Size returns the current frame size.
func (r *Renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// MarkClosed makes every later Render report render.ErrDisplayClosed.
func (r *Renderer) MarkClosed() {
	r.closeOnce.Do(func() { close(r.closed) })
}

func (r *Renderer) Init(setup scene.Setup) error {
	r.raster.Setup = setup
	return nil
}

func (r *Renderer) Render(sc *scene.Scene, cam *scene.Camera, stats render.Stats) error {
	select {
	case <-r.closed:
		return render.ErrDisplayClosed
	default:
	}

	r.mu.Lock()
	w, h, send := r.width, r.height, r.send
	r.mu.Unlock()
	if w == 0 || h == 0 || send == nil {
		return nil
	}

	f := NewFrame(w, h, r.raster.Setup.Background)
	r.raster.Draw(f, sc, cam)
	send(FrameMsg{Frame: f, Stats: stats})
	return nil
}

// Close asks the attached program to quit.
func (r *Renderer) Close() error {
	r.MarkClosed()
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()
	if send != nil {
		go send(tea.Quit())
	}
	return nil
}

// ViewerOptions configures the viewer. OnSnapshot, if set, is called with
// the current frame when the user presses s and returns the written path.
type ViewerOptions struct {
	Theme      string
	Source     string
	OnSnapshot func(*Frame) (string, error)
}

// Viewer is the bubbletea model showing frames next to a stats panel.
type Viewer struct {
	r        *Renderer
	opts     ViewerOptions
	theme    Theme
	frame    *Frame
	stats    render.Stats
	width    int
	height   int
	status   string
	showHelp bool
}

func NewViewer(r *Renderer, opts ViewerOptions) Viewer {
	return Viewer{r: r, opts: opts, theme: GetTheme(opts.Theme)}
}

func (v Viewer) Init() tea.Cmd {
	return tea.SetWindowTitle("cellviz")
}

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		v.r.Resize(msg.Width-panelWidth-2, msg.Height-1)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			v.r.MarkClosed()
			return v, tea.Quit
		case "t":
			v.theme = nextTheme(v.theme.Name)
			v.status = "theme: " + v.theme.Name
		case "s":
			v.status = v.snapshot()
		case "?":
			v.showHelp = !v.showHelp
		}
	case FrameMsg:
		v.frame = msg.Frame
		v.stats = msg.Stats
	}
	return v, nil
}

func (v Viewer) snapshot() string {
	if v.opts.OnSnapshot == nil {
		return "snapshots disabled"
	}
	if v.frame == nil {
		return "no frame yet"
	}
	path, err := v.opts.OnSnapshot(v.frame)
	if err != nil {
		return "snapshot failed: " + err.Error()
	}
	return "saved " + path
}

func (v Viewer) View() string {
	canvas := "waiting for frames..."
	if v.frame != nil {
		canvas = v.frame.String()
	}
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvas, v.panel())
	if v.showHelp {
		return main + "\n" + v.help()
	}
	return main
}

func (v Viewer) panel() string {
	var (
		title = lipgloss.NewStyle().Foreground(v.theme.Title).Bold(true).MarginBottom(1)
		label = lipgloss.NewStyle().Foreground(v.theme.Label).Width(10)
		value = lipgloss.NewStyle().Foreground(v.theme.Value)
		chart = lipgloss.NewStyle().Foreground(v.theme.Chart).Padding(1, 0)
		hint  = lipgloss.NewStyle().Foreground(v.theme.Hint).Italic(true).MarginTop(1)
		alert = lipgloss.NewStyle().Foreground(v.theme.Alert)
		box   = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(v.theme.Border).
			Padding(0, 2).
			Width(panelWidth)
	)

	row := func(k, val string) string {
		return label.Render(k) + value.Render(val) + "\n"
	}

	var s strings.Builder
	s.WriteString(title.Render("CELLVIZ") + "\n")
	if v.opts.Source != "" {
		s.WriteString(row("Source", v.opts.Source))
	}
	st := v.stats
	s.WriteString(row("Grid", fmt.Sprintf("%dx%d", st.Width, st.Height)))
	s.WriteString(row("Alive", fmt.Sprintf("%d/%d", st.Alive, st.Cells)))
	s.WriteString(row("FPS", fmt.Sprintf("%.2f", st.FPS)))
	s.WriteString(row("Elapsed", st.Elapsed.Truncate(time.Second).String()))

	if len(st.FPSHistory) > 1 {
		graph := asciigraph.Plot(st.FPSHistory,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Caption("FPS"))
		s.WriteString(chart.Render(graph) + "\n")
	}
	if v.status != "" {
		s.WriteString("\n" + alert.Render(v.status) + "\n")
	}
	s.WriteString(hint.Render("Q:Quit T:Theme S:Snapshot ?:Help"))
	return box.Render(s.String())
}

func (v Viewer) help() string {
	return lipgloss.NewStyle().Foreground(v.theme.Hint).Render(`  q / esc   quit
  t         cycle themes
  s         save the current frame as SVG
  ?         toggle this help`)
}

package term

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const blank = ' '

// Pixel is one character cell of a frame.
type Pixel struct {
	Rune  rune
	Color colorful.Color
}

// Frame is a depth-buffered grid of colored characters.
type Frame struct {
	Width, Height int
	Background    colorful.Color
	Grid          [][]Pixel
	depth         [][]float64
}

func NewFrame(w, h int, bg colorful.Color) *Frame {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	f := &Frame{
		Width:      w,
		Height:     h,
		Background: bg,
		Grid:       make([][]Pixel, h),
		depth:      make([][]float64, h),
	}
	for i := range f.Grid {
		f.Grid[i] = make([]Pixel, w)
		f.depth[i] = make([]float64, w)
	}
	f.Clear()
	return f
}

// Clear resets every pixel to the background.
func (f *Frame) Clear() {
	for y := range f.Grid {
		for x := range f.Grid[y] {
			f.Grid[y][x] = Pixel{Rune: blank, Color: f.Background}
			f.depth[y][x] = math.Inf(1)
		}
	}
}

// Set draws r at (x, y) unless something nearer is already there.
func (f *Frame) Set(x, y int, depth float64, r rune, c colorful.Color) bool {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return false
	}
	if depth > f.depth[y][x] {
		return false
	}
	f.depth[y][x] = depth
	f.Grid[y][x] = Pixel{Rune: r, Color: c}
	return true
}

// At returns the pixel at (x, y). Out of range reads return a blank pixel.
func (f *Frame) At(x, y int) Pixel {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return Pixel{Rune: blank, Color: f.Background}
	}
	return f.Grid[y][x]
}

// FillRect fills the inclusive rectangle (x0,y0)-(x1,y1) at a single depth.
func (f *Frame) FillRect(x0, y0, x1, y1 int, depth float64, r rune, c colorful.Color) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, f.Width-1), min(y1, f.Height-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			f.Set(x, y, depth, r, c)
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm, interpolating depth
// between the end points.
func (f *Frame) DrawLine(x0, y0 int, d0 float64, x1, y1 int, d1 float64, r rune, c colorful.Color) {
	var ok bool
	if x0, y0, d0, x1, y1, d1, ok = f.clip(x0, y0, d0, x1, y1, d1); !ok {
		return
	}
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	steps := max(dx, dy)

	for i := 0; ; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		f.Set(x0, y0, d0+(d1-d0)*t, r, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// clip trims a segment to the frame with Liang-Barsky so that projected
// points far outside the screen do not cost a long walk.
func (f *Frame) clip(x0, y0 int, d0 float64, x1, y1 int, d1 float64) (int, int, float64, int, int, float64, bool) {
	fx0, fy0 := float64(x0), float64(y0)
	dx, dy := float64(x1-x0), float64(y1-y0)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, fx0},
		{dx, float64(f.Width-1) - fx0},
		{-dy, fy0},
		{dy, float64(f.Height-1) - fy0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
	}
	if t0 > t1 {
		return 0, 0, 0, 0, 0, 0, false
	}
	dd := d1 - d0
	return int(math.Round(fx0 + t0*dx)), int(math.Round(fy0 + t0*dy)), d0 + t0*dd,
		int(math.Round(fx0 + t1*dx)), int(math.Round(fy0 + t1*dy)), d0 + t1*dd, true
}

// Plain returns the frame without color, one line per row.
func (f *Frame) Plain() string {
	var b strings.Builder
	for _, row := range f.Grid {
		for _, p := range row {
			b.WriteRune(p.Rune)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// String renders the frame with lipgloss, batching runs of equal color.
func (f *Frame) String() string {
	bg := lipgloss.Color(f.Background.Hex())
	var b strings.Builder
	for y, row := range f.Grid {
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].Color == row[start].Color {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, p := range row[start:x] {
				run = append(run, p.Rune)
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(row[start].Color.Hex())).
				Background(bg)
			b.WriteString(style.Render(string(run)))
			start = x
		}
		if y < len(f.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

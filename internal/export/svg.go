package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/cellviz/internal/render/term"
)

// FrameToSVG converts a terminal frame to SVG. Each character cell becomes
// a cellW x cellH box; blank cells show the background.
func FrameToSVG(f *term.Frame, cellW, cellH float64) string {
	if f == nil {
		return ""
	}

	width := float64(f.Width) * cellW
	height := float64(f.Height) * cellH

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, f.Background.Hex()))

	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			p := f.Grid[row][col]
			x := float64(col) * cellW
			y := float64(row) * cellH
			switch p.Rune {
			case ' ':
				continue
			case '█', '▓', '▒':
				sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="%s"/>
`, x, y, cellW, cellH, p.Color.Hex(), blockOpacity(p.Rune)))
			default:
				sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="%.1f">%s</text>
`, x, y+cellH*0.8, p.Color.Hex(), cellH, html.EscapeString(string(p.Rune))))
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func blockOpacity(r rune) string {
	switch r {
	case '▓':
		return "0.75"
	case '▒':
		return "0.5"
	}
	return "1"
}

// SeriesToSVG draws a line chart of evenly spaced samples, e.g. a session's
// FPS history.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = min(minV, v)
		maxV = max(maxV, v)
	}

	rangeV := maxV - minV
	if rangeV == 0 {
		rangeV = 1
	}
	minV -= rangeV * 0.1
	maxV += rangeV * 0.1
	rangeV = maxV - minV

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	step := float64(width) / float64(len(values)-1)
	for i, v := range values {
		x := float64(i) * step
		y := float64(height) - (v-minV)/rangeV*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

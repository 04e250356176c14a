package export

import (
	"errors"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoSamples is returned when charting an empty series.
var ErrNoSamples = errors.New("export: no samples")

// SaveFPSChart plots fps against elapsed seconds and writes it to path. The
// format follows the extension (.png, .svg, .pdf). A positive target draws a
// dashed reference line.
func SaveFPSChart(path, title string, times, fps []float64, target float64) error {
	n := min(len(times), len(fps))
	if n == 0 {
		return ErrNoSamples
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Elapsed (s)"
	p.Y.Label.Text = "FPS"
	p.Y.Min = 0

	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		pts[i] = plotter.XY{X: times[i], Y: fps[i]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 0x00, G: 0xcc, B: 0x66, A: 0xff}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("fps", line)

	if target > 0 {
		ref, err := plotter.NewLine(plotter.XYs{{X: times[0], Y: target}, {X: times[n-1], Y: target}})
		if err != nil {
			return err
		}
		ref.Color = color.RGBA{R: 0xcc, G: 0x33, B: 0x33, A: 0xff}
		ref.Width = vg.Points(1)
		ref.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(ref)
		p.Legend.Add("target", ref)
	}

	return p.Save(14*vg.Inch, 6*vg.Inch, path)
}

package storage

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the FPS distribution of a session.
type Summary struct {
	Samples int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
	P5      float64
	P50     float64
	P95     float64
}

// Summarize computes the distribution of fps. An empty input yields a zero
// Summary.
func Summarize(fps []float64) Summary {
	if len(fps) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), fps...)
	sort.Float64s(sorted)

	s := Summary{
		Samples: len(sorted),
		Mean:    round2(stat.Mean(sorted, nil)),
		Min:     floats.Min(sorted),
		Max:     floats.Max(sorted),
		P5:      stat.Quantile(0.05, stat.Empirical, sorted, nil),
		P50:     stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:     stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		s.StdDev = round2(stat.StdDev(sorted, nil))
	}
	return s
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/cellviz/internal/export"
	"github.com/san-kum/cellviz/internal/storage"
)

func listSessions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	sessions, err := st.List()
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("no sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tSTARTED\tDURATION\tSAMPLES\tMEAN\tMIN\tMAX")

	for _, s := range sessions {
		duration := "running"
		if !s.Ended.IsZero() {
			duration = s.Ended.Sub(s.Started).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2f\t%.2f\t%.2f\n",
			s.ID,
			s.Source,
			s.Started.Format("2006-01-02 15:04:05"),
			duration,
			s.Samples,
			s.MeanFPS,
			s.MinFPS,
			s.MaxFPS,
		)
	}

	return w.Flush()
}

func plotSession(cmd *cobra.Command, args []string) error {
	id := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(id)
	if err != nil {
		return err
	}

	times, fps, err := st.LoadSamples(id)
	if err != nil {
		return err
	}
	if len(fps) == 0 {
		return fmt.Errorf("no samples to plot")
	}

	fmt.Printf("session: %s\n", meta.ID)
	fmt.Printf("source: %s (%s)\n", meta.Source, meta.Renderer)
	sum := storage.Summarize(fps)
	fmt.Printf("samples: %d  target: %d fps\n", sum.Samples, meta.TargetFPS)
	fmt.Printf("mean: %.2f  stddev: %.2f  p5: %.2f  p50: %.2f  p95: %.2f\n\n",
		sum.Mean, sum.StdDev, sum.P5, sum.P50, sum.P95)

	graph := asciigraph.Plot(fps,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("fps per second"),
	)
	fmt.Println(graph)

	if svgOut != "" {
		if err := os.WriteFile(svgOut, []byte(export.SeriesToSVG(fps, 800, 200, "#00ff88")), 0644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgOut)
	}
	if chartOut != "" {
		title := fmt.Sprintf("%s (%s)", meta.ID, meta.Source)
		if err := export.SaveFPSChart(chartOut, title, times, fps, float64(meta.TargetFPS)); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", chartOut)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/cellviz/internal/export"
	"github.com/san-kum/cellviz/internal/hook"
	"github.com/san-kum/cellviz/internal/logging"
	"github.com/san-kum/cellviz/internal/render"
	"github.com/san-kum/cellviz/internal/render/gui"
	"github.com/san-kum/cellviz/internal/render/term"
)

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The alternate screen owns stdout, so logs go to a file or nowhere.
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "cellviz")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		logging.SetLogger(nil)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	src, err := openSource(ctx, cfg, "term")
	if err != nil {
		return err
	}
	defer src.Close()

	r := term.NewRenderer()
	viewer := term.NewViewer(r, term.ViewerOptions{
		Theme:  cfg.Theme,
		Source: src.name,
		OnSnapshot: func(f *term.Frame) (string, error) {
			if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
				return "", err
			}
			path := filepath.Join(cfg.DataDir, fmt.Sprintf("frame_%d.svg", time.Now().Unix()))
			return path, os.WriteFile(path, []byte(export.FrameToSVG(f, 8, 16)), 0644)
		},
	})
	p := tea.NewProgram(viewer, tea.WithAltScreen(), tea.WithContext(ctx))
	r.Attach(p)

	h := hook.New(r, cfg.HookOptions(nil))
	if err := h.Mount(src.host); err != nil {
		return err
	}
	defer h.Unmount()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return src.run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		r.MarkClosed()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		select {
		case <-h.Done():
			cancel()
			if err := h.Err(); err != nil && !errors.Is(err, render.ErrDisplayClosed) {
				return err
			}
		case <-gctx.Done():
		}
		return nil
	})
	return g.Wait()
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "cellviz")
		if err != nil {
			return err
		}
		defer f.Close()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	src, err := openSource(ctx, cfg, "gui")
	if err != nil {
		return err
	}
	defer src.Close()

	h := hook.New(gui.New(gui.DefaultOptions()), cfg.HookOptions(nil))

	var g errgroup.Group
	g.Go(func() error {
		select {
		case <-h.Mounted():
		case <-ctx.Done():
			return nil
		}
		return src.run(ctx)
	})

	// Run blocks on the main thread until the window closes.
	runErr := h.Run(ctx, src.host)
	cancel()
	return errors.Join(runErr, g.Wait())
}

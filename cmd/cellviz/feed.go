package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/cellviz/internal/feed"
	"github.com/san-kum/cellviz/internal/hook"
	"github.com/san-kum/cellviz/internal/logging"
	"github.com/san-kum/cellviz/internal/wsock"
)

func runFeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	srv := wsock.NewServer(hook.EventCellCount, hook.EventCellAliveMap)
	srv.HandleEvent(hook.EventUpdateFps, func(payload json.RawMessage) {
		var p hook.FPS
		if err := json.Unmarshal(payload, &p); err != nil {
			logging.Logf("[Feed] bad %s: %v", hook.EventUpdateFps, err)
			return
		}
		logging.Logf("[Feed] client fps: %.2f", p.FPS)
	})

	mux := http.NewServeMux()
	mux.Handle("/live", srv)
	httpSrv := &http.Server{Addr: cfg.Listen, Handler: mux}

	feeder := feed.New(cfg.Demo.Width, cfg.Demo.Height, cfg.Demo.Density, cfg.Demo.Period, cfg.Demo.Seed)
	fmt.Printf("serving %dx%d demo feed on ws://%s/live\n", cfg.Demo.Width, cfg.Demo.Height, cfg.Listen)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return feeder.Run(ctx, feed.SinkFunc(srv.Broadcast))
	})
	g.Go(func() error {
		<-ctx.Done()
		srv.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/cellviz/internal/config"
	"github.com/san-kum/cellviz/internal/feed"
	"github.com/san-kum/cellviz/internal/host"
	"github.com/san-kum/cellviz/internal/logging"
	"github.com/san-kum/cellviz/internal/storage"
	"github.com/san-kum/cellviz/internal/wsock"
)

// source is where host events come from: the demo feed or a websocket.
type source struct {
	name string
	host host.Host
	run  func(ctx context.Context) error

	conn    *wsock.Conn
	session *storage.Session
}

// openSource connects to cfg.Connect, or sets up the demo feed when no URL
// is configured. run must only be called once the hook is mounted.
func openSource(ctx context.Context, cfg *config.Config, renderer string) (*source, error) {
	src := &source{}
	if cfg.Connect == "" {
		local := host.NewLocal(nil)
		feeder := feed.New(cfg.Demo.Width, cfg.Demo.Height, cfg.Demo.Density, cfg.Demo.Period, cfg.Demo.Seed)
		src.name = "demo"
		src.host = local
		src.run = func(ctx context.Context) error {
			return feeder.Run(ctx, feed.SinkFunc(local.Dispatch))
		}
	} else {
		conn, err := wsock.Dial(ctx, cfg.Connect)
		if err != nil {
			return nil, err
		}
		src.name = cfg.Connect
		src.conn = conn
		src.host = conn
		src.run = conn.Serve
	}

	if record {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return nil, fmt.Errorf("init data dir: %w", err)
		}
		sess, err := st.Start(src.name, renderer, cfg.TargetFPS)
		if err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
		logging.Logf("[Storage] recording session %s", sess.ID())
		src.session = sess
		src.host = storage.NewTap(src.host, sess)
	}
	return src, nil
}

func (s *source) Close() error {
	var errs []error
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
	}
	if s.session != nil {
		errs = append(errs, s.session.Close())
	}
	return errors.Join(errs...)
}

package storage

import (
	"github.com/san-kum/cellviz/internal/hook"
	"github.com/san-kum/cellviz/internal/host"
	"github.com/san-kum/cellviz/internal/logging"
)

// Tap wraps a host so every outbound updateFps sample is also recorded.
type Tap struct {
	host.Host
	Session *Session
}

var _ host.Host = (*Tap)(nil)

func NewTap(h host.Host, s *Session) *Tap {
	return &Tap{Host: h, Session: s}
}

func (t *Tap) PushEvent(event string, payload any) error {
	if fps, ok := payload.(hook.FPS); ok && event == hook.EventUpdateFps && t.Session != nil {
		if err := t.Session.Record(fps.FPS); err != nil {
			logging.Logf("[Storage] record fps: %v", err)
		}
	}
	return t.Host.PushEvent(event, payload)
}

// Package host defines the event channel between the visualization and the
// process that owns the simulation state.
package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownEvent is returned when dispatching an event nobody handles.
var ErrUnknownEvent = errors.New("host: no handler for event")

// Handler consumes the raw JSON payload of an inbound event.
type Handler func(payload json.RawMessage)

// Host delivers inbound events to registered handlers and accepts outbound
// events from the visualization.
type Host interface {
	HandleEvent(event string, h Handler)
	PushEvent(event string, payload any) error
}

// Pushed is an outbound event captured by Local.
type Pushed struct {
	Event   string
	Payload json.RawMessage
}

// Local is an in-process Host. Dispatch plays the role of the remote side.
type Local struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	onPush   func(Pushed)
}

// NewLocal returns a Local host; onPush, if non-nil, observes every
// outbound event.
func NewLocal(onPush func(Pushed)) *Local {
	return &Local{handlers: make(map[string]Handler), onPush: onPush}
}

func (l *Local) HandleEvent(event string, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[event] = h
}

func (l *Local) PushEvent(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	if l.onPush != nil {
		l.onPush(Pushed{Event: event, Payload: data})
	}
	return nil
}

// Dispatch encodes payload and hands it to the handler registered for event.
func (l *Local) Dispatch(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	return l.DispatchRaw(event, data)
}

// DispatchRaw hands an already encoded payload to the handler for event.
func (l *Local) DispatchRaw(event string, payload json.RawMessage) error {
	l.mu.RLock()
	h, ok := l.handlers[event]
	l.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
	h(payload)
	return nil
}

// Package wsock carries host events over a websocket as JSON envelopes.
package wsock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/cellviz/internal/host"
	"github.com/san-kum/cellviz/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4 << 20
)

// ErrClosed is returned when pushing on a closed connection.
var ErrClosed = errors.New("wsock: connection closed")

// Envelope is the wire form of every event.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps payload into an envelope for event.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Payload: data})
}

// Conn is one websocket endpoint. It implements host.Host.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex
	closed  bool

	mu       sync.RWMutex
	handlers map[string]host.Handler
}

var _ host.Host = (*Conn)(nil)

// Dial connects to a websocket endpoint serving host events.
func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %s)", url, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return newConn(ws), nil
}

func newConn(ws *websocket.Conn) *Conn {
	ws.SetReadLimit(maxMessage)
	return &Conn{ws: ws, handlers: make(map[string]host.Handler)}
}

func (c *Conn) HandleEvent(event string, h host.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = h
}

func (c *Conn) PushEvent(event string, payload any) error {
	data, err := Encode(event, payload)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, data)
}

func (c *Conn) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}

// Serve reads envelopes and dispatches them to the registered handlers until
// the peer hangs up or ctx is done. It keeps the connection alive with pings.
func (c *Conn) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	g.Go(func() error {
		<-ctx.Done()
		c.Close()
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := c.write(websocket.PingMessage, nil); err != nil {
					return nil
				}
			}
		}
	})
	g.Go(func() error {
		defer cancel()
		err := c.readLoop()
		if ctx.Err() != nil || c.isClosed() || isNormalClose(err) {
			return nil
		}
		return err
	})
	return g.Wait()
}

func (c *Conn) readLoop() error {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logging.Logf("[WS] dropping malformed envelope: %v", err)
			continue
		}
		c.mu.RLock()
		h, ok := c.handlers[env.Event]
		c.mu.RUnlock()
		if !ok {
			logging.Logf("[WS] %v: %s", host.ErrUnknownEvent, env.Event)
			continue
		}
		h(env.Payload)
	}
}

func (c *Conn) isClosed() bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.closed
}

// Close sends a close frame and releases the socket. It is idempotent.
func (c *Conn) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return c.ws.Close()
}

// abort releases the socket without the close handshake, failing any write
// in progress.
func (c *Conn) abort() { _ = c.ws.Close() }

func isNormalClose(err error) bool {
	return err == nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

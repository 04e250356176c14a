package wsock

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/san-kum/cellviz/internal/host"
	"github.com/san-kum/cellviz/internal/logging"
)

// sendQueue is the number of broadcasts a client may fall behind before it
// is dropped.
const sendQueue = 64

// client is one connected viewer. Broadcasts are queued on send and written
// by the client's own goroutine.
type client struct {
	conn *Conn
	send chan []byte
	done chan struct{}
}

// Server accepts visualization clients and broadcasts host events to all of
// them. The latest payload of every retained event is replayed to clients
// that join late, in the order the events were first broadcast.
type Server struct {
	upgrader websocket.Upgrader
	wg       sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	clients  map[*client]struct{}
	handlers map[string]host.Handler
	retain   map[string]bool
	order    []string
	latest   map[string][]byte
}

// NewServer returns a server replaying the latest payload of each event in
// retain to new clients.
func NewServer(retain ...string) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients:  make(map[*client]struct{}),
		handlers: make(map[string]host.Handler),
		retain:   make(map[string]bool),
		latest:   make(map[string][]byte),
	}
	for _, ev := range retain {
		s.retain[ev] = true
	}
	return s
}

// HandleEvent registers h for events sent by any client.
func (s *Server) HandleEvent(event string, h host.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = h
}

// Broadcast queues event for every connected client without waiting on the
// network. Clients whose queue is full are dropped.
func (s *Server) Broadcast(event string, payload any) error {
	data, err := Encode(event, payload)
	if err != nil {
		return err
	}

	var slow []*client
	s.mu.Lock()
	if s.retain[event] {
		if _, seen := s.latest[event]; !seen {
			s.order = append(s.order, event)
		}
		s.latest[event] = data
	}
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	s.mu.Unlock()

	for _, c := range slow {
		logging.Logf("[WS] dropping client %d events behind on %s", len(c.send), event)
		if s.unregister(c) {
			c.conn.abort()
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		http.Error(w, "server closed", http.StatusServiceUnavailable)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logf("[WS] upgrade failed: %v", err)
		return
	}
	c := &client{conn: newConn(ws), done: make(chan struct{})}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		c.conn.Close()
		return
	}
	for ev, h := range s.handlers {
		c.conn.HandleEvent(ev, h)
	}
	// The replay is queued before the client is visible to Broadcast.
	c.send = make(chan []byte, len(s.order)+sendQueue)
	for _, ev := range s.order {
		c.send <- s.latest[ev]
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	wrote := make(chan struct{})
	go func() {
		defer close(wrote)
		s.writeLoop(c)
	}()

	logging.Logf("[WS] client connected: %s", r.RemoteAddr)

	if err := c.conn.Serve(r.Context()); err != nil {
		logging.Logf("[WS] client %s: %v", r.RemoteAddr, err)
	}
	s.unregister(c)
	<-wrote
	c.conn.Close()
	logging.Logf("[WS] client disconnected: %s", r.RemoteAddr)
}

func (s *Server) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.conn.write(websocket.TextMessage, data); err != nil {
				if !errors.Is(err, ErrClosed) {
					logging.Logf("[WS] write failed: %v", err)
				}
				if s.unregister(c) {
					c.conn.abort()
				}
				return
			}
		}
	}
}

// unregister removes c and stops its writer. It reports false if c was
// already gone.
func (s *Server) unregister(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return false
	}
	delete(s.clients, c)
	close(c.done)
	return true
}

// Close disconnects every client and waits for their handlers to return.
// Later connections are refused.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if s.unregister(c) {
			c.conn.Close()
		}
	}
	s.wg.Wait()
}

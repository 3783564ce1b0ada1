// Package devserver serves a live view of a display tree over HTTP. Thin
// clients receive a snapshot of the tree on connect and a stream of mutation
// patches over websocket afterwards, mirroring the document remotely.
package devserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/Pilves/dot/pkg/dom"
)

const (
	writeTimeout = 10 * time.Second

	// sendBuffer is the per-client patch queue; a client that cannot keep
	// up has patches dropped and must resync from a fresh snapshot.
	sendBuffer = 256
)

// Config configures the server.
type Config struct {
	// Logger for connection lifecycle and drop diagnostics.
	// Defaults to slog.Default.
	Logger *slog.Logger

	// MetricsHandler, when set, is mounted at /metrics
	// (typically promhttp.Handler()).
	MetricsHandler http.Handler
}

// Option configures the server.
type Option func(*Config)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithMetricsHandler mounts a metrics handler at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(c *Config) {
		c.MetricsHandler = h
	}
}

// Server streams a document's mutations to websocket clients.
type Server struct {
	doc    *dom.Document
	logger *slog.Logger

	metricsHandler http.Handler
	upgrader       websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan dom.Patch
}

// New creates a server observing doc. Installing the server replaces any
// previously installed observer on the document.
func New(doc *dom.Document, opts ...Option) *Server {
	cfg := Config{Logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{
		doc:            doc,
		logger:         cfg.Logger,
		metricsHandler: cfg.MetricsHandler,
		clients:        make(map[*client]struct{}),
	}
	doc.Observe(s.broadcast)
	return s
}

// Handler returns the HTTP handler: /healthz, /tree (JSON snapshot), /ws
// (patch stream), and /metrics when configured.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/tree", s.handleTree)
	r.Get("/ws", s.handleWS)
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}
	return r
}

func (s *Server) handleTree(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, s.doc.Snapshot())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("devserver: upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan dom.Patch, sendBuffer),
	}

	// Snapshot first, so the patch stream applies to known state.
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(s.doc.Snapshot()); err != nil {
		s.logger.Error("devserver: snapshot write failed", "error", err)
		conn.Close()
		return
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("devserver: client connected", "remote", conn.RemoteAddr())

	go s.writeLoop(c)
	go s.readLoop(c)
}

// broadcast fans a patch out to every connected client. A full queue drops
// the patch for that client rather than blocking the mutating goroutine.
func (s *Server) broadcast(p dom.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- p:
		default:
			s.logger.Warn("devserver: client queue full, dropping patch",
				"remote", c.conn.RemoteAddr(), "op", p.Op.String())
		}
	}
}

func (s *Server) writeLoop(c *client) {
	defer s.drop(c)
	for p := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(p); err != nil {
			return
		}
	}
}

// readLoop discards inbound messages; the stream is one-way. It exists to
// notice the peer closing.
func (s *Server) readLoop(c *client) {
	defer s.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				s.logger.Error("devserver: read error", "error", err)
			}
			return
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

// Close disconnects all clients and stops observing the document.
func (s *Server) Close() {
	s.doc.Observe(nil)
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		s.drop(c)
	}
}

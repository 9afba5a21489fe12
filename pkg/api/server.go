// Package api is the loopback hand-off endpoint of a running PanCrop
// instance. A second invocation posts the file it was given to /open; local
// tools can follow opens and exports on the /ws event feed and fetch exported
// files under /exports/.
package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/netutil"

	"github.com/dixieflatline76/PanCrop/util/log"
)

// MaxConnections bounds concurrent connections to the hand-off server.
const MaxConnections = 16

// Event types sent on the websocket feed.
const (
	EventOpened   = "opened"
	EventExported = "exported"
	EventAddress  = "address"
)

// Event is one message on the websocket feed.
type Event struct {
	Type     string `json:"type"`
	Path     string `json:"path,omitempty"`
	Text     string `json:"text,omitempty"`
	Upscaled bool   `json:"upscaled,omitempty"`
}

// Server represents the local REST/WebSocket server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	upgrader   websocket.Upgrader

	// WebSocket management
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex

	exportMu  sync.RWMutex
	exportDir string

	// Callbacks
	onOpen func(path string) error
}

// NewServer creates a new API server.
func NewServer() *Server {
	s := &Server{
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			// Only loopback pages may subscribe.
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || isLoopbackOrigin(origin)
			},
		},
		clients: make(map[*websocket.Conn]bool),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/open", s.handleOpen)
	s.mux.HandleFunc("/exports/", s.handleExports)
}

// SetOpenHandler sets the callback for files handed over by another
// process.
func (s *Server) SetOpenHandler(handler func(path string) error) {
	s.onOpen = handler
}

// SetExportDir sets the folder served under /exports/.
func (s *Server) SetExportDir(dir string) {
	s.exportMu.Lock()
	defer s.exportMu.Unlock()
	s.exportDir = dir
}

func (s *Server) getExportDir() string {
	s.exportMu.RLock()
	defer s.exportMu.RUnlock()
	return s.exportDir
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on addr and serves until Stop. It blocks.
func (s *Server) Start(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve serves on l, limited to MaxConnections at a time. It blocks.
func (s *Server) Serve(l net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	err := s.httpServer.Serve(netutil.LimitListener(l, MaxConnections))
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the server and closes feed subscribers.
func (s *Server) Stop() error {
	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
	s.clientsMu.Unlock()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Broadcast sends ev to all connected feed clients. Clients that fail are
// dropped.
func (s *Server) Broadcast(ev Event) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(ev); err != nil {
			log.Printf("Failed to broadcast to client: %v", err)
			client.Close()
			delete(s.clients, client)
		}
	}
}

// ClientCount returns the number of connected feed clients.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

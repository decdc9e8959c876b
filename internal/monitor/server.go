// ABOUTME: HTTP status server for remote monitoring
// ABOUTME: Serves a JSON snapshot and pushes snapshots over a websocket
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/gwambient/gwambient/internal/version"
)

const (
	// DefaultInterval is how often snapshots are pushed
	DefaultInterval = time.Second

	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
)

// Config holds monitor configuration
type Config struct {
	Port       int
	Name       string
	EnableMDNS bool
	Interval   time.Duration
	Collect    Collector
}

// Server publishes installation status
type Server struct {
	config    Config
	serverID  string
	startTime time.Time
	upgrader  websocket.Upgrader
	mux       *http.ServeMux

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	wg      sync.WaitGroup
}

// New creates a monitor server
func New(config Config) *Server {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Collect == nil {
		config.Collect = func() Status { return Status{} }
	}

	s := &Server{
		config:    config,
		serverID:  uuid.New().String(),
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			// read-only status feed for the local network
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux:     http.NewServeMux(),
		clients: make(map[*websocket.Conn]struct{}),
	}

	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Clients returns the number of connected websocket clients
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// snapshot collects a status and fills in the server's own fields
func (s *Server) snapshot() Status {
	st := s.config.Collect()
	st.ServerID = s.serverID
	st.Name = s.config.Name
	st.Product = version.Product
	st.Version = version.Version
	st.Time = time.Now()
	st.Uptime = time.Since(s.startTime).Seconds()
	return st
}

// Run serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("monitor listen failed: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	log.Printf("Status server listening on %s", ln.Addr())

	if s.config.EnableMDNS {
		responder, err := advertise(s.config.Name, port)
		if err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			defer responder.Shutdown()
		}
	}

	httpServer := &http.Server{Handler: s.mux}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	var serverErr error
	select {
	case <-ctx.Done():
	case serverErr = <-errChan:
		log.Printf("Status server error: %v", serverErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Status server shutdown error: %v", err)
	}

	// hijacked connections aren't closed by Shutdown
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()

	for range errChan {
	}

	if serverErr != nil {
		return fmt.Errorf("status server failed: %w", serverErr)
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.snapshot()); err != nil {
		log.Printf("Error encoding status: %v", err)
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("Status client connected from %s", r.RemoteAddr)

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConnection(conn)

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	log.Printf("Status client %s disconnected", r.RemoteAddr)
}

// handleConnection pushes snapshots until the client goes away
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		// the feed is one-way; reading only notices the close
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debugf("WebSocket error: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	if err := s.send(conn); err != nil {
		conn.Close()
		<-closed
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			if err := s.send(conn); err != nil {
				conn.Close()
				<-closed
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				conn.Close()
				<-closed
				return
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn) error {
	data, err := json.Marshal(s.snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Debugf("Error writing status: %v", err)
		return err
	}
	return nil
}

// Package server provides an importable HTTP server that serves fixture pages
// for browser tests and a WebRTC signalling endpoint. Peer connection
// lifecycle is published on Events so tests can wait for it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/pion/webrtc/v4"

	"github.com/thesyncim/browsertest/pkg/events"
	"github.com/thesyncim/browsertest/pkg/logging"
)

// Config holds server configuration options.
type Config struct {
	Addr         string        // Listen address (e.g., ":8080" or ":0" for random port)
	ReadTimeout  time.Duration // HTTP read timeout
	WriteTimeout time.Duration // HTTP write timeout
	Logger       *log.Logger   // Nil discards
}

// DefaultConfig returns a configuration suitable for testing.
// Uses ":0" to bind to a random available port.
func DefaultConfig() Config {
	return Config{
		Addr:         ":0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is an importable HTTP server for browser tests.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
	mu         sync.Mutex
	running    bool

	logger *log.Logger
	events *events.Emitter[Event]

	peersMu sync.Mutex
	peers   map[*webrtc.PeerConnection]struct{}
}

// NewServer creates a new server with the given configuration.
// The server is not started until Start() is called.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Server{
		logger: logger,
		events: events.NewEmitter[Event](),
		peers:  make(map[*webrtc.PeerConnection]struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/offer", s.HandleOffer)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// Events returns the emitter carrying peer connection events.
func (s *Server) Events() *events.Emitter[Event] {
	return s.events
}

// Start begins listening and serving HTTP requests.
// Returns the actual address the server is listening on (useful when port is 0).
// This method is non-blocking - the server runs in a goroutine.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.addr, nil
	}

	// Create listener to get actual port
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = ln
	s.addr = ln.Addr().String()
	s.running = true

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("fixture server stopped")
		}
	}()

	s.logger.Info().Str("addr", s.addr).Msg("fixture server listening")
	return s.addr, nil
}

// Shutdown closes open peer connections and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	s.peersMu.Lock()
	peers := make([]*webrtc.PeerConnection, 0, len(s.peers))
	for pc := range s.peers {
		peers = append(peers, pc)
	}
	s.peersMu.Unlock()
	for _, pc := range peers {
		if err := pc.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close peer connection")
		}
	}

	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server is listening on.
// Returns empty string if server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// URL returns an http://localhost URL for path on the running server.
// Chrome only grants media access to secure contexts, which localhost is.
func (s *Server) URL(path string) string {
	_, port, err := net.SplitHostPort(s.Addr())
	if err != nil {
		return ""
	}
	return "http://localhost:" + port + path
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, ok := Pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(page)); err != nil {
		s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("write failed")
	}
}

func (s *Server) addPeer(pc *webrtc.PeerConnection) {
	s.peersMu.Lock()
	s.peers[pc] = struct{}{}
	s.peersMu.Unlock()
}

func (s *Server) removePeer(pc *webrtc.PeerConnection) {
	s.peersMu.Lock()
	delete(s.peers, pc)
	s.peersMu.Unlock()
}

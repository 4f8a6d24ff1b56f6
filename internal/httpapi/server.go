package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"falcon-mcp/pkg/logging"
)

// Server runs the REST handler on its own listener.
type Server struct {
	handler *Handler

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
}

// NewServer wraps h in an HTTP server.
func NewServer(h *Handler) *Server {
	return &Server{handler: h}
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.handler.cfg.Host, fmt.Sprint(s.handler.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.handler.Router(),
		ReadHeaderTimeout: s.handler.cfg.ReadHeaderTimeout,
	}
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve blocks until Stop. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln, srv := s.listener, s.httpServer
	s.mu.Unlock()
	if ln == nil {
		return errors.New("http gateway: Serve called before Listen")
	}

	srv.BaseContext = func(net.Listener) context.Context { return context.WithoutCancel(ctx) }
	logging.Info("HTTPAPI", "Serving REST gateway on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http gateway: %w", err)
	}
	return nil
}

// Start binds and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	go func() {
		if err := s.Serve(ctx); err != nil {
			logging.Error("HTTPAPI", err, "REST gateway stopped")
		}
	}()
	return nil
}

// Stop stops accepting requests and waits for in-flight ones until ctx
// expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, ln := s.httpServer, s.listener
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	logging.Info("HTTPAPI", "Stopping REST gateway")
	err := srv.Shutdown(ctx)
	// Shutdown only closes listeners that reached Serve.
	_ = ln.Close()
	return err
}

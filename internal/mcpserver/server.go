package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"falcon-mcp/internal/config"
	"falcon-mcp/internal/pipeline"
	"falcon-mcp/pkg/logging"
)

// ServerName is advertised in the MCP initialize handshake.
const ServerName = "falcon-mcp"

// Server exposes the pipeline over MCP.
type Server struct {
	cfg      config.MCPConfig
	pipeline *pipeline.Pipeline
	version  string
	mcp      *server.MCPServer

	stdin  io.Reader
	stdout io.Writer

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
	sseServer  *server.SSEServer
	streamable *server.StreamableHTTPServer
	stdioStop  context.CancelFunc
	draining   bool
	inflight   sync.WaitGroup
}

// Option customizes a Server.
type Option func(*Server)

// WithVersion sets the version advertised to clients.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithStdio replaces the standard streams used by the stdio transport.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.stdin, s.stdout = in, out
	}
}

// New creates a server and registers one MCP tool per descriptor in the
// pipeline's registry.
func New(cfg config.MCPConfig, p *pipeline.Pipeline, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: p,
		version:  "dev",
		stdin:    os.Stdin,
		stdout:   os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(
		ServerName,
		s.version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	s.mcp.AddTools(s.serverTools()...)
	return s
}

// MCPServer returns the underlying protocol server, e.g. for in-process
// clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Listen binds the TCP listener for the HTTP based transports. It is a no-op
// for stdio. Binding early lets the supervisor fail fast on port conflicts.
func (s *Server) Listen() error {
	if s.cfg.Transport == config.MCPTransportStdio {
		return nil
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
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

// Serve runs the configured transport until Stop is called. It returns nil
// after a clean shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if s.cfg.Transport == config.MCPTransportStdio {
		return s.serveStdio(ctx)
	}

	s.mu.Lock()
	ln := s.listener
	if s.draining {
		s.mu.Unlock()
		return nil
	}
	if ln == nil {
		s.mu.Unlock()
		return errors.New("mcp server: Serve called before Listen")
	}
	srv := &http.Server{ReadHeaderTimeout: 10 * time.Second}
	s.httpServer = srv

	switch s.cfg.Transport {
	case config.MCPTransportStreamableHTTP:
		s.streamable = server.NewStreamableHTTPServer(s.mcp,
			server.WithStreamableHTTPServer(srv),
			server.WithHTTPContextFunc(withHeaderHints),
		)
		mux := http.NewServeMux()
		mux.Handle("/mcp", s.streamable)
		srv.Handler = mux
		logging.Info("MCPServer", "Serving MCP over streamable-http on %s/mcp", ln.Addr())

	default:
		baseURL := s.cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://" + ln.Addr().String()
		}
		opts := []server.SSEOption{
			server.WithHTTPServer(srv),
			server.WithBaseURL(baseURL),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithSSEContextFunc(withHeaderHints),
		}
		if s.cfg.KeepAliveInterval > 0 {
			opts = append(opts, server.WithKeepAliveInterval(s.cfg.KeepAliveInterval))
		}
		s.sseServer = server.NewSSEServer(s.mcp, opts...)
		srv.Handler = s.sseServer
		logging.Info("MCPServer", "Serving MCP over SSE on %s/sse", baseURL)
	}
	s.mu.Unlock()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return nil
	}
	s.stdioStop = cancel
	s.mu.Unlock()

	stdio := server.NewStdioServer(s.mcp)
	logging.Info("MCPServer", "Serving MCP over stdio")

	err := stdio.Listen(ctx, s.stdin, s.stdout)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("mcp stdio server: %w", err)
}

// Start binds and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	go func() {
		if err := s.Serve(ctx); err != nil {
			logging.Error("MCPServer", err, "MCP transport stopped")
		}
	}()
	return nil
}

// Stop stops accepting connections and waits for in-flight calls until ctx
// expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.draining = true
	sseServer, streamable, httpServer, ln, stdioStop := s.sseServer, s.streamable, s.httpServer, s.listener, s.stdioStop
	s.mu.Unlock()

	logging.Info("MCPServer", "Stopping MCP server")

	var err error
	switch {
	case sseServer != nil:
		err = sseServer.Shutdown(ctx)
	case streamable != nil:
		err = streamable.Shutdown(ctx)
	case httpServer != nil:
		err = httpServer.Shutdown(ctx)
	case ln != nil:
		err = ln.Close()
	}
	if stdioStop != nil {
		stdioStop()
	}

	if waitErr := s.wait(ctx); waitErr != nil {
		return waitErr
	}
	return err
}

// wait blocks until every admitted call has finished or ctx is done.
func (s *Server) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mcp server: in-flight calls still running: %w", ctx.Err())
	}
}

// admit registers a call unless the server is draining.
func (s *Server) admit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining {
		return false
	}
	s.inflight.Add(1)
	return true
}

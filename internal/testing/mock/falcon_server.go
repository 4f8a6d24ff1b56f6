package mock

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// Response is one canned reply of the stub Falcon API.
type Response struct {
	Status int
	Body   string
	Delay  time.Duration
}

// RecordedRequest is a request received by the stub, token calls excluded.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// FalconServer is a stub of the Falcon API for tests. It answers the OAuth2
// token endpoint and replays canned responses per method and path. When a
// route has several responses they are served in order and the last one
// repeats.
type FalconServer struct {
	httpServer *http.Server
	listener   net.Listener

	mu          sync.Mutex
	routes      map[string][]Response
	hits        map[string]int
	requests    []RecordedRequest
	tokenStatus int
	clientID    string
	secret      string

	tokenCalls atomic.Int64
}

// NewFalconServer creates a stub that accepts any client credentials.
func NewFalconServer() *FalconServer {
	return &FalconServer{
		routes:      make(map[string][]Response),
		hits:        make(map[string]int),
		tokenStatus: http.StatusCreated,
	}
}

// RequireCredentials makes the token endpoint reject any other credentials
// with 401.
func (s *FalconServer) RequireCredentials(clientID, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientID, s.secret = clientID, secret
}

// SetTokenStatus forces the token endpoint to answer with status.
func (s *FalconServer) SetTokenStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenStatus = status
}

// Handle registers the responses for method and path.
func (s *FalconServer) Handle(method, path string, responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = responses
}

// Start listens on a random loopback port and serves in the background.
func (s *FalconServer) Start() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to find available port: %w", err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", s.handleToken)
	mux.HandleFunc("/", s.handleAPI)
	s.httpServer = &http.Server{Handler: mux}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()
	return nil
}

// URL returns the base URL of the running stub.
func (s *FalconServer) URL() string {
	return "http://" + s.listener.Addr().String()
}

// Stop shuts the stub down.
func (s *FalconServer) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Requests returns a copy of the recorded API requests.
func (s *FalconServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Hits returns how often method and path were called.
func (s *FalconServer) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// TokenCalls returns how many token exchanges were made.
func (s *FalconServer) TokenCalls() int {
	return int(s.tokenCalls.Load())
}

func (s *FalconServer) handleToken(w http.ResponseWriter, r *http.Request) {
	s.tokenCalls.Add(1)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	status, clientID, secret := s.tokenStatus, s.clientID, s.secret
	s.mu.Unlock()

	if clientID != "" && (r.PostForm.Get("client_id") != clientID || r.PostForm.Get("client_secret") != secret) {
		status = http.StatusUnauthorized
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 300 {
		_, _ = io.WriteString(w, `{"errors":[{"code":401,"message":"access denied, invalid client credentials"}]}`)
		return
	}
	_, _ = io.WriteString(w, `{"access_token":"stub-token","token_type":"bearer","expires_in":1799}`)
}

func (s *FalconServer) handleAPI(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	responses, ok := s.routes[key]
	n := s.hits[key]
	s.hits[key] = n + 1
	s.mu.Unlock()

	if !ok || len(responses) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errors":[{"code":404,"message":"route not stubbed"}]}`)
		return
	}

	resp := responses[min(n, len(responses)-1)]
	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = io.WriteString(w, resp.Body)
}

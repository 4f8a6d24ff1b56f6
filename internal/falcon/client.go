package falcon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/config"
	"falcon-mcp/internal/observe"
	"falcon-mcp/pkg/logging"
)

const (
	// TenantHeader carries the tenant (member CID) on upstream requests.
	TenantHeader = "X-CS-TENANT-ID"

	tokenPath       = "/oauth2/token"
	maxResponseSize = 16 << 20
)

// Client executes operations against the Falcon API. It is safe for
// concurrent use; the only shared state is the connection pool.
type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	cfg        config.UpstreamConfig
	metrics    *observe.Metrics
	newBackOff func() backoff.BackOff
}

// Option customizes a Client.
type Option func(*Client)

// WithMetrics records upstream attempts on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithBackOff replaces the retry schedule, mainly for tests.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) {
		c.newBackOff = fn
	}
}

// NewClient creates a client with a pooled transport sized by cfg.
func NewClient(cfg config.UpstreamConfig, opts ...Option) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		MaxIdleConns:          cfg.MaxIdleConnsPerHost * 4,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	c := &Client{
		httpClient: &http.Client{Transport: transport},
		transport:  transport,
		cfg:        cfg,
		metrics:    observe.NoopMetrics(),
	}
	c.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		if cfg.InitialBackoff > 0 {
			b.InitialInterval = cfg.InitialBackoff
		}
		if cfg.MaxBackoff > 0 {
			b.MaxInterval = cfg.MaxBackoff
		}
		return b
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle pooled connections.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

// Invoke runs op with params and creds, retrying UpstreamError.
func (c *Client) Invoke(ctx context.Context, op api.Operation, params map[string]interface{}, creds api.ResolvedCredentials) (json.RawMessage, error) {
	var req api.Request
	if op.Build != nil {
		var err error
		if req, err = op.Build(params); err != nil {
			return nil, api.Classify(err)
		}
	}

	// In-flight calls outlive their caller; each attempt has its own deadline.
	ctx = context.WithoutCancel(ctx)

	attempt := 0
	payload, err := backoff.Retry(ctx, func() (json.RawMessage, error) {
		attempt++
		payload, err := c.do(ctx, op, req, creds)
		if err == nil {
			return payload, nil
		}
		if apiErr, ok := api.AsError(err); ok && apiErr.Retryable() {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(max(c.cfg.MaxAttempts, 1))),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.metrics.UpstreamRetries.Add(ctx, 1)
			logging.Warn("FalconClient", "%s %s attempt %d failed (%s), retrying in %s",
				op.Method, op.Path, attempt, api.KindOf(err), next)
		}),
	)
	if err != nil {
		return nil, api.Classify(err)
	}
	return payload, nil
}

// do performs one attempt: token exchange plus the API request.
func (c *Client) do(parent context.Context, op api.Operation, req api.Request, creds api.ResolvedCredentials) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(parent, c.cfg.Timeout)
	defer cancel()

	ctx, span := observe.StartSpan(ctx, "falcon "+op.Method+" "+op.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", op.Method),
			attribute.String("url.path", op.Path),
		),
	)
	defer span.End()

	payload, status, err := c.send(ctx, op, req, creds)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	c.metrics.RecordUpstream(ctx, op.Method, statusClass(status, err))
	if err != nil {
		span.SetStatus(codes.Error, string(api.KindOf(err)))
		return nil, err
	}
	return payload, nil
}

func (c *Client) send(ctx context.Context, op api.Operation, req api.Request, creds api.ResolvedCredentials) (json.RawMessage, int, error) {
	token, err := c.token(ctx, creds)
	if err != nil {
		return nil, 0, err
	}

	endpoint := creds.BaseURL + op.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, 0, api.NewInternalError("encode request body for %s", op.Path).WithCause(err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, op.Method, endpoint, body)
	if err != nil {
		return nil, 0, api.NewInternalError("build request for %s", op.Path).WithCause(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if creds.TenantID != "" {
		httpReq.Header.Set(TenantHeader, creds.TenantID)
	}
	if c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	logging.Debug("FalconClient", "%s %s", op.Method, op.Path)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, c.transportError(ctx, op.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, c.transportError(ctx, op.Path, err)
	}

	payload, err := mapResponse(resp.StatusCode, data, creds)
	return payload, resp.StatusCode, err
}

// token obtains a fresh bearer token over the pooled client.
func (c *Client) token(ctx context.Context, creds api.ResolvedCredentials) (string, error) {
	cc := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.BaseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err == nil {
		return tok.AccessToken, nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		switch {
		case status >= 500:
			return "", api.NewUpstreamError("token endpoint returned status %d", status).WithStatus(status)
		case status == http.StatusTooManyRequests:
			return "", api.NewClientError(status, "token endpoint rate limited the request")
		default:
			return "", api.NewAuthError("authentication failed: token endpoint returned status %d", status).WithStatus(status)
		}
	}
	if ctx.Err() != nil || isNetworkError(err) {
		return "", c.transportError(ctx, tokenPath, err)
	}
	// Malformed token responses surface as plain errors from the library.
	return "", api.NewProtocolError("token endpoint returned an unusable response").WithCause(err)
}

func (c *Client) transportError(ctx context.Context, path string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return api.NewUpstreamError("request to %s timed out after %s", path, c.cfg.Timeout).WithCause(err)
	}
	return api.NewUpstreamError("request to %s failed: upstream unreachable", path).WithCause(err)
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Ping reports whether baseURL answers HTTP at all. Any status counts as
// reachable.
func (c *Client) Ping(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("falcon API unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.Body.Close()
}

func statusClass(status int, err error) string {
	if status == 0 {
		if err != nil {
			return "error"
		}
		return "unknown"
	}
	return fmt.Sprintf("%dxx", status/100)
}

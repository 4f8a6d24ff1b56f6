package falcon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/config"
	"falcon-mcp/internal/testing/mock"
)

const testKey = "client-id-00000001:client-secret-0001"

func newStub(t *testing.T) *mock.FalconServer {
	t.Helper()
	stub := mock.NewFalconServer()
	require.NoError(t, stub.Start())
	t.Cleanup(func() { _ = stub.Stop(context.Background()) })
	return stub
}

func newTestClient(cfg func(*config.UpstreamConfig)) *Client {
	upstream := config.GetDefaultConfig().Upstream
	upstream.Timeout = 2 * time.Second
	if cfg != nil {
		cfg(&upstream)
	}
	return NewClient(upstream, WithBackOff(func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}))
}

func credsFor(stub *mock.FalconServer, tenant string) api.ResolvedCredentials {
	return api.ResolvedCredentials{
		APIKey:       testKey,
		ClientID:     "client-id-00000001",
		ClientSecret: "client-secret-0001",
		TenantID:     tenant,
		BaseURL:      stub.URL(),
	}
}

var queryHosts = api.Operation{
	Method: http.MethodGet,
	Path:   "/devices/queries/devices/v1",
	Build: func(params map[string]interface{}) (api.Request, error) {
		q := url.Values{}
		q.Set("filter", params["filter"].(string))
		return api.Request{Query: q}, nil
	},
}

func TestInvoke_Success(t *testing.T) {
	stub := newStub(t)
	stub.RequireCredentials("client-id-00000001", "client-secret-0001")
	stub.Handle(http.MethodGet, queryHosts.Path, mock.Response{Status: 200, Body: `{"resources":["h1"]}`})

	c := newTestClient(nil)
	payload, err := c.Invoke(context.Background(), queryHosts, map[string]interface{}{"filter": "hostname:'x'"}, credsFor(stub, "tenant-7"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"resources":["h1"]}`, string(payload))

	reqs := stub.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "hostname:'x'", reqs[0].Query.Get("filter"))
	assert.Equal(t, "Bearer stub-token", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "tenant-7", reqs[0].Header.Get(TenantHeader))
	assert.Equal(t, "falcon-mcp", reqs[0].Header.Get("User-Agent"))
	assert.Equal(t, 1, stub.TokenCalls())
}

func TestInvoke_NoTenantHeaderWithoutTenant(t *testing.T) {
	stub := newStub(t)
	stub.Handle(http.MethodGet, queryHosts.Path, mock.Response{Status: 200, Body: `{}`})

	_, err := newTestClient(nil).Invoke(context.Background(), queryHosts, map[string]interface{}{"filter": "x"}, credsFor(stub, ""))
	require.NoError(t, err)
	assert.Empty(t, stub.Requests()[0].Header.Get(TenantHeader))
}

func TestInvoke_PostsJSONBody(t *testing.T) {
	stub := newStub(t)
	op := api.Operation{
		Method: http.MethodPost,
		Path:   "/detects/entities/summaries/GET/v1",
		Build: func(params map[string]interface{}) (api.Request, error) {
			return api.Request{Body: map[string]interface{}{"ids": params["ids"]}}, nil
		},
	}
	stub.Handle(op.Method, op.Path, mock.Response{Status: 200, Body: `{"resources":[]}`})

	_, err := newTestClient(nil).Invoke(context.Background(), op, map[string]interface{}{"ids": []string{"d1", "d2"}}, credsFor(stub, ""))
	require.NoError(t, err)

	req := stub.Requests()[0]
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"ids":["d1","d2"]}`, string(req.Body))
}

func TestInvoke_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		resp    mock.Response
		kind    api.Kind
		status  int
		message string
		hits    int
	}{
		{name: "unauthorized", resp: mock.Response{Status: 401, Body: `{}`}, kind: api.KindAuth, status: 401, hits: 1},
		{name: "forbidden", resp: mock.Response{Status: 403, Body: `{"errors":[{"code":403,"message":"access denied, authorization failed"}]}`}, kind: api.KindAuth, status: 403, message: "authorization failed", hits: 1},
		{name: "bad filter", resp: mock.Response{Status: 400, Body: `{"errors":[{"code":400,"message":"invalid filter"}]}`}, kind: api.KindClient, status: 400, message: "invalid filter", hits: 1},
		{name: "not found", resp: mock.Response{Status: 404, Body: `not json`}, kind: api.KindClient, status: 404, message: "request was rejected", hits: 1},
		{name: "server error retried", resp: mock.Response{Status: 503, Body: `{}`}, kind: api.KindUpstream, status: 503, hits: 3},
		{name: "malformed success body", resp: mock.Response{Status: 200, Body: `{"resources":`}, kind: api.KindProtocol, status: 200, hits: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub(t)
			stub.Handle(http.MethodGet, queryHosts.Path, tt.resp)

			_, err := newTestClient(nil).Invoke(context.Background(), queryHosts, map[string]interface{}{"filter": "x"}, credsFor(stub, ""))
			require.Error(t, err)

			apiErr, ok := api.AsError(err)
			require.True(t, ok, "expected classified error, got %v", err)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.RemoteStatus)
			if tt.message != "" {
				assert.Contains(t, apiErr.Message, tt.message)
			}
			assert.Equal(t, tt.hits, stub.Hits(http.MethodGet, queryHosts.Path))
		})
	}
}

func TestInvoke_EmptySuccessBody(t *testing.T) {
	stub := newStub(t)
	stub.Handle(http.MethodGet, queryHosts.Path, mock.Response{Status: 204})

	payload, err := newTestClient(nil).Invoke(context.Background(), queryHosts, map[string]interface{}{"filter": "x"}, credsFor(stub, ""))
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("{}"), payload)
}

func TestInvoke_RetriesUpstreamThenSucceeds(t *testing.T) {
	stub := newStub(t)
	stub.Handle(http.MethodGet, queryHosts.Path,
		mock.Response{Status: 502, Body: `{}`},
		mock.Response{Status: 500, Body: `{}`},
		mock.Response{Status: 200, Body: `{"resources":["ok"]}`},
	)

	payload, err := newTestClient(nil).Invoke(context.Background(), queryHosts, map[string]interface{}{"filter": "x"}, credsFor(stub, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"resources":["ok"]}`, string(payload))
	assert.Equal(t, 3, stub.Hits(http.MethodGet, queryHosts.Path))
	// A fresh token is fetched for every attempt.
	assert.Equal(t, 3, stub.TokenCalls())
}

func TestInvoke_MaxAttemptsHonoured(t *testing.T) {
	stub := newStub(t)
	stub.Handle(http.MethodGet, queryHosts.Path, mock.Response{Status: 500, Body: `{}`})

	c := newTestClient(func(u *config.UpstreamConfig) { u.MaxAttempts = 1 })
	_, err := c.Invoke(context.Background(), queryHosts, map[string]interface{}{"filter": "x"}, credsFor(stub, ""))
	require.Error(t, err)
	assert.Equal(t, 1, stub.Hits(http.MethodGet, queryHosts.Path))
}

func TestInvoke_TimeoutIsUpstreamError(t *testing.T) {
	stub := newStub(t)
	stub.Handle(http.MethodGet, queryHosts.Path, mock.Response{Status: 200, Body: `{}`, Delay: 500 * time.Millisecond})

	c := newTestClient(func(u *config.UpstreamConfig) {
		u.Timeout = 50 * time.Millisecond
		u.MaxAttempts = 2
	})
	start := time.Now()
	_, err := c.Invoke(context.Background(), queryHosts, map[string]interface{}{"filter": "x"}, credsFor(stub, ""))
	require.Error(t, err)
	assert.Equal(t, api.KindUpstream, api.KindOf(err))
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestInvoke_UnreachableIsUpstreamError(t *testing.T) {
	c := newTestClient(func(u *config.UpstreamConfig) { u.MaxAttempts = 1 })
	creds := api.ResolvedCredentials{APIKey: testKey, ClientID: "a", ClientSecret: "b", BaseURL: "http://127.0.0.1:1"}

	_, err := c.Invoke(context.Background(), queryHosts, map[string]interface{}{"filter": "x"}, creds)
	require.Error(t, err)
	assert.Equal(t, api.KindUpstream, api.KindOf(err))
}

func TestInvoke_TokenRejected(t *testing.T) {
	stub := newStub(t)
	stub.RequireCredentials("someone-else", "other-secret")
	stub.Handle(http.MethodGet, queryHosts.Path, mock.Response{Status: 200, Body: `{}`})

	_, err := newTestClient(nil).Invoke(context.Background(), queryHosts, map[string]interface{}{"filter": "x"}, credsFor(stub, ""))
	require.Error(t, err)
	assert.Equal(t, api.KindAuth, api.KindOf(err))
	assert.Equal(t, 0, stub.Hits(http.MethodGet, queryHosts.Path))
	assert.Equal(t, 1, stub.TokenCalls(), "auth failures are never retried")
}

func TestInvoke_CallerCancellationDoesNotAbortInFlight(t *testing.T) {
	stub := newStub(t)
	stub.Handle(http.MethodGet, queryHosts.Path, mock.Response{Status: 200, Body: `{"done":true}`, Delay: 100 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	payload, err := newTestClient(nil).Invoke(ctx, queryHosts, map[string]interface{}{"filter": "x"}, credsFor(stub, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"done":true}`, string(payload))
}

func TestInvoke_ErrorMessagesNeverContainSecrets(t *testing.T) {
	stub := newStub(t)
	creds := credsFor(stub, "")
	stub.Handle(http.MethodGet, queryHosts.Path, mock.Response{
		Status: 400,
		Body:   `{"errors":[{"code":400,"message":"bad client client-id-00000001 with secret client-secret-0001"}]}`,
	})

	_, err := newTestClient(nil).Invoke(context.Background(), queryHosts, map[string]interface{}{"filter": "x"}, creds)
	require.Error(t, err)
	for _, secret := range creds.Secrets() {
		assert.NotContains(t, err.Error(), secret)
	}
	assert.Contains(t, err.Error(), "[REDACTED]")
}

func TestInvoke_BuildErrorIsClassified(t *testing.T) {
	op := api.Operation{
		Method: http.MethodGet,
		Path:   "/x",
		Build: func(map[string]interface{}) (api.Request, error) {
			return api.Request{}, assert.AnError
		},
	}
	_, err := newTestClient(nil).Invoke(context.Background(), op, nil, api.ResolvedCredentials{})
	require.Error(t, err)
	assert.Equal(t, api.KindInternal, api.KindOf(err))
}

func TestInvoke_ConcurrentCallsSharePool(t *testing.T) {
	stub := newStub(t)
	stub.Handle(http.MethodGet, queryHosts.Path, mock.Response{Status: 200, Body: `{"resources":[]}`, Delay: 10 * time.Millisecond})

	c := newTestClient(func(u *config.UpstreamConfig) { u.MaxConnsPerHost = 4 })
	defer c.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Invoke(context.Background(), queryHosts, map[string]interface{}{"filter": "x"}, credsFor(stub, ""))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 32, stub.Hits(http.MethodGet, queryHosts.Path))
}

func TestPing(t *testing.T) {
	stub := newStub(t)
	c := newTestClient(nil)

	assert.NoError(t, c.Ping(context.Background(), stub.URL()))
	assert.Error(t, c.Ping(context.Background(), "http://127.0.0.1:1"))
}

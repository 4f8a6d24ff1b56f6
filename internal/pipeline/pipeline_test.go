package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/credentials"
	"falcon-mcp/internal/registry"
	"falcon-mcp/pkg/logging"
)

const (
	requestKey   = "request-key-AAAAAAAAAAAA"
	transportKey = "transport-key-BBBBBBBBBB"
	envKey       = "env-key-CCCCCCCCCCCCCCCC"
)

// fakeInvoker records the last call and answers with a fixed result.
type fakeInvoker struct {
	mu      sync.Mutex
	calls   int
	creds   api.ResolvedCredentials
	params  map[string]interface{}
	payload json.RawMessage
	err     error
	panics  bool
}

func (f *fakeInvoker) Invoke(_ context.Context, _ api.Operation, params map[string]interface{}, creds api.ResolvedCredentials) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls++
	f.creds = creds
	f.params = params
	f.mu.Unlock()
	if f.panics {
		panic("adapter blew up")
	}
	return f.payload, f.err
}

func (f *fakeInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	reg.MustRegister(
		registry.ToolDescriptor{
			Name:        "query_hosts",
			Description: "Query hosts",
			Parameters: []registry.Parameter{
				{Name: "filter", Type: registry.TypeString},
				{Name: "limit", Type: registry.TypeInteger, Default: 100, Min: registry.Bound(1), Max: registry.Bound(5000)},
			},
			Handler: api.Operation{Method: http.MethodGet, Path: "/devices/queries/devices/v1"},
		},
		registry.ToolDescriptor{
			Name:        "update_detection_status",
			Description: "Update detections",
			Parameters: []registry.Parameter{
				{Name: "detection_ids", Type: registry.TypeArray, Required: true, MinItems: 1},
				{Name: "status", Type: registry.TypeString, Required: true, Enum: []string{"new", "ignored"}},
			},
			Handler: api.Operation{Method: http.MethodPost, Path: "/detects/entities/detects/v2"},
		},
	)
	reg.Seal()
	return reg
}

func newPipeline(t *testing.T, env credentials.Environment, inv Invoker) *Pipeline {
	t.Helper()
	return New(testRegistry(t), credentials.NewResolver(env), inv)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.Init(logging.LevelDebug, logging.FormatJSON, &buf)
	return &buf
}

func TestExecute_Success(t *testing.T) {
	inv := &fakeInvoker{payload: json.RawMessage(`{"resources":["h1"]}`)}
	p := newPipeline(t, credentials.Environment{APIKey: envKey}, inv)

	res := p.Execute(context.Background(), api.InvocationRequest{
		Tool:      "query_hosts",
		Params:    map[string]interface{}{"filter": "hostname:'x'", "limit": float64(10)},
		Transport: api.TransportHTTP,
	}, api.CredentialHints{})

	require.True(t, res.OK(), "unexpected failure: %v", res.Err)
	assert.JSONEq(t, `{"resources":["h1"]}`, string(res.Payload))
	assert.Equal(t, map[string]interface{}{"filter": "hostname:'x'", "limit": 10}, inv.params)
	assert.Equal(t, envKey, inv.creds.APIKey)
	assert.Equal(t, credentials.DefaultBaseURL, inv.creds.BaseURL)
}

func TestExecute_NilPayloadBecomesEmptyObject(t *testing.T) {
	p := newPipeline(t, credentials.Environment{APIKey: envKey}, &fakeInvoker{})
	res := p.Execute(context.Background(), api.InvocationRequest{Tool: "query_hosts"}, api.CredentialHints{})
	require.True(t, res.OK())
	assert.Equal(t, json.RawMessage("{}"), res.Payload)
}

func TestExecute_UnknownTool(t *testing.T) {
	inv := &fakeInvoker{}
	p := newPipeline(t, credentials.Environment{APIKey: envKey}, inv)

	res := p.Execute(context.Background(), api.InvocationRequest{Tool: "nope"}, api.CredentialHints{})
	require.False(t, res.OK())
	assert.Equal(t, api.KindUnknownTool, res.Err.Kind)
	assert.Nil(t, res.Payload)
	assert.Zero(t, inv.callCount())
}

func TestExecute_ValidationListsEveryField(t *testing.T) {
	inv := &fakeInvoker{}
	p := newPipeline(t, credentials.Environment{APIKey: envKey}, inv)

	res := p.Execute(context.Background(), api.InvocationRequest{
		Tool:   "update_detection_status",
		Params: map[string]interface{}{"bogus": 1, "api_key": 42},
	}, api.CredentialHints{})

	require.False(t, res.OK())
	assert.Equal(t, api.KindValidation, res.Err.Kind)

	var fields []string
	for _, f := range res.Err.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"api_key", "bogus", "detection_ids", "status"}, fields)
	assert.Zero(t, inv.callCount(), "validation failures never reach the adapter")
}

func TestExecute_ValidationBeforeCredentials(t *testing.T) {
	p := newPipeline(t, credentials.Environment{}, &fakeInvoker{})

	res := p.Execute(context.Background(), api.InvocationRequest{
		Tool:   "query_hosts",
		Params: map[string]interface{}{"limit": "ten"},
	}, api.CredentialHints{})
	require.False(t, res.OK())
	assert.Equal(t, api.KindValidation, res.Err.Kind)
}

func TestExecute_MissingCredentials(t *testing.T) {
	inv := &fakeInvoker{}
	p := newPipeline(t, credentials.Environment{}, inv)

	res := p.Execute(context.Background(), api.InvocationRequest{Tool: "query_hosts"}, api.CredentialHints{})
	require.False(t, res.OK())
	assert.Equal(t, api.KindMissingCredentials, res.Err.Kind)
	assert.Zero(t, inv.callCount())
}

func TestExecute_CredentialPrecedence(t *testing.T) {
	inv := &fakeInvoker{payload: json.RawMessage(`{}`)}
	p := newPipeline(t, credentials.Environment{APIKey: envKey, TenantID: "env-tenant"}, inv)

	res := p.Execute(context.Background(), api.InvocationRequest{
		Tool:   "query_hosts",
		Params: map[string]interface{}{"api_key": requestKey, "filter": "x"},
	}, api.CredentialHints{APIKey: transportKey, TenantID: "header-tenant"})

	require.True(t, res.OK())
	assert.Equal(t, requestKey, inv.creds.APIKey)
	assert.Equal(t, "header-tenant", inv.creds.TenantID)
	_, leaked := inv.params["api_key"]
	assert.False(t, leaked, "credential keys are lifted out of the parameters")
}

func TestExecute_InlineParamsOutrankRequestHints(t *testing.T) {
	inv := &fakeInvoker{payload: json.RawMessage(`{}`)}
	p := newPipeline(t, credentials.Environment{}, inv)

	params := map[string]interface{}{"tenant_id": "param-tenant", "base_url": "https://api.eu-1.crowdstrike.com/"}
	res := p.Execute(context.Background(), api.InvocationRequest{
		Tool:   "query_hosts",
		Params: params,
		Hints:  api.CredentialHints{APIKey: requestKey, TenantID: "hint-tenant"},
	}, api.CredentialHints{})

	require.True(t, res.OK(), "unexpected failure: %v", res.Err)
	assert.Equal(t, "param-tenant", inv.creds.TenantID)
	assert.Equal(t, "https://api.eu-1.crowdstrike.com", inv.creds.BaseURL)
	assert.Len(t, params, 2, "caller parameters are not mutated")
}

func TestExecute_ClassifiedErrorsPassThrough(t *testing.T) {
	upstream := api.NewClientError(404, "Not Found: no such device")
	p := newPipeline(t, credentials.Environment{APIKey: envKey}, &fakeInvoker{err: upstream})

	res := p.Execute(context.Background(), api.InvocationRequest{Tool: "query_hosts"}, api.CredentialHints{})
	require.False(t, res.OK())
	assert.Same(t, upstream, res.Err)
}

func TestExecute_UnclassifiedErrorIsInternal(t *testing.T) {
	p := newPipeline(t, credentials.Environment{APIKey: envKey}, &fakeInvoker{err: errors.New("boom " + envKey)})

	res := p.Execute(context.Background(), api.InvocationRequest{Tool: "query_hosts"}, api.CredentialHints{})
	require.False(t, res.OK())
	assert.Equal(t, api.KindInternal, res.Err.Kind)
	assert.NotContains(t, res.Err.Message, envKey)
}

func TestExecute_PanicIsInternal(t *testing.T) {
	p := newPipeline(t, credentials.Environment{APIKey: envKey}, &fakeInvoker{panics: true})

	res := p.Execute(context.Background(), api.InvocationRequest{Tool: "query_hosts"}, api.CredentialHints{})
	require.False(t, res.OK())
	assert.Equal(t, api.KindInternal, res.Err.Kind)
}

func TestExecute_SecretsNeverLogged(t *testing.T) {
	logs := captureLogs(t)
	const distinctive = "ZZ-distinctive-fake-key-9f8e7d"

	inv := &fakeInvoker{err: api.NewAuthError("Forbidden: access denied")}
	p := newPipeline(t, credentials.Environment{}, inv)

	res := p.Execute(context.Background(), api.InvocationRequest{
		Tool:      "query_hosts",
		Params:    map[string]interface{}{"api_key": distinctive, "tenant_id": "cid-123"},
		Transport: api.TransportMCP,
		RequestID: "req-1",
	}, api.CredentialHints{})

	require.False(t, res.OK())
	assert.NotContains(t, res.Err.Error(), distinctive)
	assert.NotContains(t, logs.String(), distinctive)
	assert.Contains(t, logs.String(), `"subsystem":"Audit"`)
	assert.Contains(t, logs.String(), `"error_kind":"AuthError"`)
	assert.Contains(t, logs.String(), `"tenant_scoped":true`)
	assert.Contains(t, logs.String(), `"request_id":"req-1"`)
}

func TestExecute_Concurrent(t *testing.T) {
	var served atomic.Int64
	inv := invokerFunc(func(_ context.Context, _ api.Operation, params map[string]interface{}, creds api.ResolvedCredentials) (json.RawMessage, error) {
		served.Add(1)
		return json.Marshal(map[string]interface{}{"filter": params["filter"], "tenant": creds.TenantID})
	})
	p := newPipeline(t, credentials.Environment{APIKey: envKey}, inv)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tenant := "tenant-" + string(rune('a'+i%26))
			res := p.Execute(context.Background(), api.InvocationRequest{
				Tool:   "query_hosts",
				Params: map[string]interface{}{"filter": tenant, "tenant_id": tenant},
			}, api.CredentialHints{})
			if assert.True(t, res.OK()) {
				var got map[string]string
				assert.NoError(t, json.Unmarshal(res.Payload, &got))
				assert.Equal(t, tenant, got["filter"])
				assert.Equal(t, tenant, got["tenant"])
			}
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 50, served.Load())
}

type invokerFunc func(ctx context.Context, op api.Operation, params map[string]interface{}, creds api.ResolvedCredentials) (json.RawMessage, error)

func (f invokerFunc) Invoke(ctx context.Context, op api.Operation, params map[string]interface{}, creds api.ResolvedCredentials) (json.RawMessage, error) {
	return f(ctx, op, params, creds)
}

package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
)

// Transport names reported in audit events and metrics.
const (
	TransportMCP  = "mcp"
	TransportHTTP = "http"
	TransportCLI  = "cli"
)

// Reserved parameter names that carry inline credentials. They are lifted
// out of the parameter body before schema validation.
const (
	ParamAPIKey   = "api_key"
	ParamTenantID = "tenant_id"
	ParamBaseURL  = "base_url"
)

// CredentialHints holds optional credential values from one source.
// Empty strings mean "not supplied".
type CredentialHints struct {
	APIKey   string
	TenantID string
	BaseURL  string
}

// String never renders the API key.
func (h CredentialHints) String() string {
	return fmt.Sprintf("CredentialHints{APIKey:%t TenantID:%t BaseURL:%q}",
		h.APIKey != "", h.TenantID != "", h.BaseURL)
}

// LogValue implements slog.LogValuer without exposing secrets.
func (h CredentialHints) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("api_key_set", h.APIKey != ""),
		slog.Bool("tenant_set", h.TenantID != ""),
		slog.String("base_url", h.BaseURL),
	)
}

// InvocationRequest is one tool call as received by a transport. It is
// created per call and never shared.
type InvocationRequest struct {
	Tool      string
	Params    map[string]interface{}
	Hints     CredentialHints
	Transport string
	RequestID string
}

// ResolvedCredentials is the effective credential triple for one call.
// It is never persisted, logged or cached.
type ResolvedCredentials struct {
	APIKey       string
	ClientID     string
	ClientSecret string
	TenantID     string
	BaseURL      string
}

// Secrets returns the values that must never appear in output.
func (c ResolvedCredentials) Secrets() []string {
	return []string{c.APIKey, c.ClientID, c.ClientSecret}
}

// String never renders secret values.
func (c ResolvedCredentials) String() string {
	return fmt.Sprintf("ResolvedCredentials{TenantID:%t BaseURL:%q}", c.TenantID != "", c.BaseURL)
}

// GoString guards %#v formatting.
func (c ResolvedCredentials) GoString() string {
	return c.String()
}

// LogValue implements slog.LogValuer without exposing secrets.
func (c ResolvedCredentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("tenant_set", c.TenantID != ""),
		slog.String("base_url", c.BaseURL),
	)
}

// MarshalJSON prevents credentials from being serialized.
func (c ResolvedCredentials) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"tenant_set": c.TenantID != "",
		"base_url":   c.BaseURL,
	})
}

// InvocationResult is either a success payload or a classified failure.
// Exactly one of Payload and Err is set.
type InvocationResult struct {
	Payload json.RawMessage
	Err     *Error
}

// Success creates a successful result.
func Success(payload json.RawMessage) InvocationResult {
	return InvocationResult{Payload: payload}
}

// Failure creates a failed result.
func Failure(err *Error) InvocationResult {
	return InvocationResult{Err: err}
}

// OK reports whether the call succeeded.
func (r InvocationResult) OK() bool {
	return r.Err == nil
}

// Request is the upstream request an Operation builds from validated
// parameters.
type Request struct {
	Query url.Values
	Body  interface{}
}

// Operation maps validated parameters to one upstream API call.
type Operation struct {
	Method string
	Path   string
	Build  func(params map[string]interface{}) (Request, error)
}

// ErrorResponse is the wire shape of a failed call on both transports.
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// ResultResponse is the wire shape of a successful REST call.
type ResultResponse struct {
	Result json.RawMessage `json:"result"`
}

package falcon

import (
	"encoding/json"
	"net/http"
	"strings"

	"falcon-mcp/internal/api"
	"falcon-mcp/pkg/logging"
)

// errorEnvelope is the part of a Falcon response body that carries errors.
type errorEnvelope struct {
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// mapResponse classifies an upstream response.
func mapResponse(status int, body []byte, creds api.ResolvedCredentials) (json.RawMessage, error) {
	switch {
	case status >= 200 && status < 300:
		trimmed := strings.TrimSpace(string(body))
		if trimmed == "" {
			return json.RawMessage("{}"), nil
		}
		if !json.Valid([]byte(trimmed)) {
			return nil, api.NewProtocolError("upstream returned a malformed JSON body (status %d)", status).WithStatus(status)
		}
		return json.RawMessage(trimmed), nil

	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, api.NewAuthError("%s", describe(status, body, creds, "credentials were rejected")).WithStatus(status)

	case status >= 400 && status < 500:
		return nil, api.NewClientError(status, "%s", describe(status, body, creds, "request was rejected"))

	case status >= 500:
		return nil, api.NewUpstreamError("%s", describe(status, body, creds, "upstream server error")).WithStatus(status)
	}
	return nil, api.NewProtocolError("unexpected upstream status %d", status).WithStatus(status)
}

// describe builds a caller-facing message from the upstream error envelope,
// scrubbed of credential values.
func describe(status int, body []byte, creds api.ResolvedCredentials, fallback string) string {
	msg := fallback
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Errors) > 0 && env.Errors[0].Message != "" {
		msg = env.Errors[0].Message
	}
	msg = logging.Redact(msg, creds.Secrets()...)
	return http.StatusText(status) + ": " + msg
}

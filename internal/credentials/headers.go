package credentials

import (
	"net/http"
	"strings"

	"falcon-mcp/internal/api"
)

// Transport-level credential headers understood by both front ends.
const (
	HeaderAPIKey   = "X-API-Key"
	HeaderTenantID = "X-Tenant-ID"
	HeaderBaseURL  = "X-Base-URL"
)

// HintsFromHeader extracts transport credential hints from request headers.
// X-API-Key wins over an "Authorization: Bearer" value.
func HintsFromHeader(h http.Header) api.CredentialHints {
	hints := api.CredentialHints{
		APIKey:   strings.TrimSpace(h.Get(HeaderAPIKey)),
		TenantID: strings.TrimSpace(h.Get(HeaderTenantID)),
		BaseURL:  strings.TrimSpace(h.Get(HeaderBaseURL)),
	}
	if hints.APIKey == "" {
		if scheme, token, ok := strings.Cut(h.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
			hints.APIKey = strings.TrimSpace(token)
		}
	}
	return hints
}

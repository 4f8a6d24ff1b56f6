package credentials

import (
	"net/url"
	"strings"

	"falcon-mcp/internal/api"
)

// DefaultBaseURL is the Falcon API endpoint used when no source names one.
const DefaultBaseURL = "https://api.crowdstrike.com"

// MinAPIKeyLength is the shortest accepted API key after trimming.
const MinAPIKeyLength = 16

// Environment variable names.
const (
	EnvAPIKey       = "FALCON_API_KEY"
	EnvAPIKeyAlt    = "CROWDSTRIKE_API_KEY"
	EnvTenantID     = "FALCON_TENANT_ID"
	EnvTenantIDAlt  = "CROWDSTRIKE_TENANT_ID"
	EnvClientSecret = "FALCON_CLIENT_SECRET"
	EnvBaseURL      = "FALCON_API_BASE_URL"
)

// Environment holds the process-wide credential configuration.
type Environment struct {
	APIKey       string
	TenantID     string
	ClientSecret string
	BaseURL      string
}

// String never renders secret values.
func (e Environment) String() string {
	return api.CredentialHints{APIKey: e.APIKey, TenantID: e.TenantID, BaseURL: e.BaseURL}.String()
}

// FromEnv reads the credential environment variables through lookup,
// usually os.LookupEnv. FALCON_* names win over CROWDSTRIKE_* aliases.
func FromEnv(lookup func(string) (string, bool)) Environment {
	get := func(names ...string) string {
		for _, name := range names {
			if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}
	return Environment{
		APIKey:       get(EnvAPIKey, EnvAPIKeyAlt),
		TenantID:     get(EnvTenantID, EnvTenantIDAlt),
		ClientSecret: get(EnvClientSecret),
		BaseURL:      get(EnvBaseURL),
	}
}

// Resolver derives ResolvedCredentials from request hints, transport hints
// and the environment. It is immutable and safe for concurrent use.
type Resolver struct {
	env Environment
}

// NewResolver creates a resolver over the given environment snapshot.
func NewResolver(env Environment) *Resolver {
	return &Resolver{env: env}
}

// Sources in precedence order.
const (
	sourceRequest = iota
	sourceTransport
	sourceEnvironment
	sourceNone
)

// Resolve applies precedence request > transport > environment per field.
// A caller-supplied base URL is only honoured together with a
// caller-supplied key: the environment key is never sent to a host the
// caller names.
func (r *Resolver) Resolve(request, transport api.CredentialHints) (api.ResolvedCredentials, error) {
	apiKey, keySource := firstSource(request.APIKey, transport.APIKey, r.env.APIKey)
	if keySource == sourceNone {
		return api.ResolvedCredentials{}, api.NewMissingCredentialsError()
	}
	if len(apiKey) < MinAPIKeyLength {
		return api.ResolvedCredentials{}, api.NewValidationError([]api.FieldError{
			{Field: api.ParamAPIKey, Message: "API key is too short"},
		})
	}

	rawBase, baseSource := firstSource(request.BaseURL, transport.BaseURL, r.env.BaseURL)
	if keySource == sourceEnvironment && baseSource < sourceEnvironment {
		return api.ResolvedCredentials{}, api.NewValidationError([]api.FieldError{
			{Field: api.ParamBaseURL, Message: "requires an api_key supplied with the request"},
		})
	}
	if baseSource == sourceNone {
		rawBase = DefaultBaseURL
	}
	baseURL, err := normalizeBaseURL(rawBase)
	if err != nil {
		return api.ResolvedCredentials{}, err
	}

	clientID, secret := splitKey(apiKey, r.env.ClientSecret)
	return api.ResolvedCredentials{
		APIKey:       apiKey,
		ClientID:     clientID,
		ClientSecret: secret,
		TenantID:     first(request.TenantID, transport.TenantID, r.env.TenantID),
		BaseURL:      baseURL,
	}, nil
}

// splitKey handles the "client_id:client_secret" form. Without a colon the
// secret comes from the environment, falling back to the key itself.
func splitKey(apiKey, envSecret string) (string, string) {
	if id, secret, ok := strings.Cut(apiKey, ":"); ok {
		return id, secret
	}
	if envSecret != "" {
		return apiKey, envSecret
	}
	return apiKey, apiKey
}

func normalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", api.NewValidationError([]api.FieldError{
			{Field: api.ParamBaseURL, Message: "must be an absolute http(s) URL"},
		})
	}
	return strings.TrimRight(raw, "/"), nil
}

func first(values ...string) string {
	v, _ := firstSource(values...)
	return v
}

// firstSource returns the first non-blank value and its position.
func firstSource(values ...string) (string, int) {
	for i, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v, i
		}
	}
	return "", sourceNone
}

package httpapi

import (
	"net/http"

	"falcon-mcp/internal/api"
)

// StatusFor maps an error kind to the HTTP status of the REST response.
func StatusFor(kind api.Kind) int {
	switch kind {
	case api.KindValidation, api.KindUnknownTool, api.KindClient:
		return http.StatusBadRequest
	case api.KindAuth, api.KindMissingCredentials:
		return http.StatusUnauthorized
	case api.KindUpstream, api.KindProtocol:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

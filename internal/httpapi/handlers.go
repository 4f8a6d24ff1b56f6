package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/credentials"
	"falcon-mcp/internal/registry"
	"falcon-mcp/pkg/logging"
)

const serviceName = "falcon-mcp"

type infoResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
	Tools     []string          `json:"tools"`
}

type toolsResponse struct {
	Tools []registry.DescriptorView `json:"tools"`
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		Service: serviceName,
		Version: h.version,
		Endpoints: map[string]string{
			"health":    "/healthz",
			"ready":     "/readyz",
			"tools":     "/tools",
			"call_tool": "/tools/{tool_name}",
		},
		Tools: h.pipeline.Registry().Names(),
	})
}

// handleHealth is liveness only and never depends on the Falcon API.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.CheckUpstream || h.pinger == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	if err := h.pinger.Ping(r.Context(), h.readyBaseURL); err != nil {
		logging.Warn("HTTPAPI", "Readiness check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toolsResponse{Tools: h.pipeline.Registry().Views()})
}

func (h *Handler) handleCallTool(w http.ResponseWriter, r *http.Request) {
	params, apiErr, status := h.decodeParams(w, r)
	if apiErr != nil {
		writeError(w, status, apiErr)
		return
	}

	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}

	result := h.pipeline.Execute(r.Context(), api.InvocationRequest{
		Tool:      chi.URLParam(r, "name"),
		Params:    params,
		Transport: api.TransportHTTP,
		RequestID: requestID,
	}, credentials.HintsFromHeader(r.Header))

	if !result.OK() {
		writeError(w, StatusFor(result.Err.Kind), result.Err)
		return
	}
	writeJSON(w, http.StatusOK, api.ResultResponse{Result: result.Payload})
}

// decodeParams reads the body as a JSON object. An empty body means no
// parameters.
func (h *Handler) decodeParams(w http.ResponseWriter, r *http.Request) (map[string]interface{}, *api.Error, int) {
	body := r.Body
	if h.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, bodyError("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge
		}
		return nil, bodyError("failed to read request body"), http.StatusBadRequest
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return map[string]interface{}{}, nil, 0
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, bodyError("request body is not valid JSON"), http.StatusBadRequest
	}
	if dec.More() {
		return nil, bodyError("request body must contain a single JSON object"), http.StatusBadRequest
	}
	params, ok := raw.(map[string]interface{})
	if !ok {
		return nil, bodyError("request body must be a JSON object"), http.StatusBadRequest
	}
	return params, nil, 0
}

func bodyError(format string, args ...interface{}) *api.Error {
	e := api.NewError(api.KindValidation, format, args...)
	e.Fields = []api.FieldError{{Field: "body", Message: e.Message}}
	return e
}

func writeError(w http.ResponseWriter, status int, apiErr *api.Error) {
	writeJSON(w, status, api.ErrorResponse{Error: apiErr})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("HTTPAPI", "Failed to write response: %v", err)
	}
}

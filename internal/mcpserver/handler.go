package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/credentials"
)

// inlineCredentialArgs are advertised on every tool as optional arguments.
var inlineCredentialArgs = map[string]string{
	api.ParamAPIKey:   "Falcon API key or client_id:client_secret (defaults to FALCON_API_KEY)",
	api.ParamTenantID: "Tenant (member CID) for multi-tenant calls (defaults to FALCON_TENANT_ID)",
	api.ParamBaseURL:  "Falcon API base URL override",
}

type hintsKey struct{}

// withHeaderHints captures the credential headers of the HTTP request that
// carried the message.
func withHeaderHints(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, hintsKey{}, credentials.HintsFromHeader(r.Header))
}

func hintsFromContext(ctx context.Context) api.CredentialHints {
	hints, _ := ctx.Value(hintsKey{}).(api.CredentialHints)
	return hints
}

func (s *Server) serverTools() []server.ServerTool {
	var tools []server.ServerTool
	for desc := range s.pipeline.Registry().List() {
		tools = append(tools, server.ServerTool{
			Tool:    desc.MCPTool(inlineCredentialArgs),
			Handler: s.handleToolCall,
		})
	}
	return tools
}

// handleToolCall runs one tools/call through the pipeline. Failures are
// reported as tool results with IsError set, never as protocol errors.
func (s *Server) handleToolCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.admit() {
		return errorResult(api.NewInternalError("server is shutting down")), nil
	}
	defer s.inflight.Done()

	result := s.pipeline.Execute(ctx, api.InvocationRequest{
		Tool:      req.Params.Name,
		Params:    req.GetArguments(),
		Transport: api.TransportMCP,
		RequestID: uuid.NewString(),
	}, hintsFromContext(ctx))

	if !result.OK() {
		return errorResult(result.Err), nil
	}
	return mcp.NewToolResultStructured(result.Payload, string(result.Payload)), nil
}

func errorResult(apiErr *api.Error) *mcp.CallToolResult {
	body, err := json.Marshal(api.ErrorResponse{Error: apiErr})
	if err != nil {
		return mcp.NewToolResultError(apiErr.Error())
	}
	res := mcp.NewToolResultError(string(body))
	res.StructuredContent = api.ErrorResponse{Error: apiErr}
	return res
}

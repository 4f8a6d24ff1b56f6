package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/credentials"
	"falcon-mcp/internal/observe"
	"falcon-mcp/internal/registry"
	"falcon-mcp/pkg/logging"
)

// Invoker executes one upstream operation. falcon.Client implements it.
type Invoker interface {
	Invoke(ctx context.Context, op api.Operation, params map[string]interface{}, creds api.ResolvedCredentials) (json.RawMessage, error)
}

// Stage names the last state a call reached.
type Stage string

const (
	StageReceived     Stage = "received"
	StageLookedUp     Stage = "looked_up"
	StageValidated    Stage = "validated"
	StageCredentialed Stage = "credentialed"
	StageDispatched   Stage = "dispatched"
	StageCompleted    Stage = "completed"
)

// Pipeline executes tool calls. It holds only read-only collaborators and is
// safe for concurrent use.
type Pipeline struct {
	registry *registry.Registry
	resolver *credentials.Resolver
	invoker  Invoker
	metrics  *observe.Metrics
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithMetrics records call counts and latency on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// New creates a pipeline over a populated registry.
func New(reg *registry.Registry, res *credentials.Resolver, inv Invoker, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: reg,
		resolver: res,
		invoker:  inv,
		metrics:  observe.NoopMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the registry the pipeline dispatches from.
func (p *Pipeline) Registry() *registry.Registry {
	return p.registry
}

// Execute runs one call. transport carries hints the transport extracted
// outside the parameter body, such as request headers. The result is either
// a payload or a classified *api.Error, never both.
func (p *Pipeline) Execute(ctx context.Context, req api.InvocationRequest, transport api.CredentialHints) api.InvocationResult {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "tool "+req.Tool)
	defer span.End()
	span.SetAttributes(
		attribute.String("tool.name", req.Tool),
		attribute.String("tool.transport", req.Transport),
	)

	inFlight := metric.WithAttributes(attribute.String("transport", req.Transport))
	p.metrics.InFlight.Add(ctx, 1, inFlight)
	defer p.metrics.InFlight.Add(ctx, -1, inFlight)

	payload, stage, creds, err := p.run(ctx, req, transport)

	elapsed := time.Since(start)
	event := logging.AuditEvent{
		Action:    "tool.call",
		Outcome:   logging.OutcomeSuccess,
		Target:    req.Tool,
		Transport: req.Transport,
		RequestID: req.RequestID,
		HasTenant: creds.TenantID != "",
		Duration:  elapsed,
	}
	span.SetAttributes(attribute.String("tool.stage", string(stage)))

	if err != nil {
		apiErr := api.Classify(err)
		event.Outcome = logging.OutcomeFailure
		event.ErrorKind = string(apiErr.Kind)
		span.SetStatus(codes.Error, string(apiErr.Kind))
		logging.Audit(event)
		p.metrics.RecordToolCall(ctx, req.Tool, req.Transport, string(apiErr.Kind), elapsed.Seconds())
		logging.Debug("Pipeline", "%s failed at %s: %s", req.Tool, stage, apiErr.Message)
		return api.Failure(apiErr)
	}

	logging.Audit(event)
	p.metrics.RecordToolCall(ctx, req.Tool, req.Transport, "", elapsed.Seconds())
	return api.Success(payload)
}

// run walks the state machine and reports the last stage reached.
func (p *Pipeline) run(ctx context.Context, req api.InvocationRequest, transport api.CredentialHints) (json.RawMessage, Stage, api.ResolvedCredentials, error) {
	var none api.ResolvedCredentials

	desc, err := p.registry.Lookup(req.Tool)
	if err != nil {
		return nil, StageReceived, none, err
	}

	params, hints, liftFields := liftCredentials(req.Params, req.Hints)
	validated, err := registry.Validate(desc, params)
	if len(liftFields) > 0 {
		err = mergeFieldErrors(liftFields, err)
	}
	if err != nil {
		return nil, StageLookedUp, none, err
	}

	creds, err := p.resolver.Resolve(hints, transport)
	if err != nil {
		return nil, StageValidated, none, err
	}

	payload, err := p.dispatch(ctx, desc, validated, creds)
	if err != nil {
		return nil, StageDispatched, creds, err
	}
	return payload, StageCompleted, creds, nil
}

// dispatch calls the adapter and converts a panic into an InternalError.
func (p *Pipeline) dispatch(ctx context.Context, desc registry.ToolDescriptor, params map[string]interface{}, creds api.ResolvedCredentials) (payload json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Pipeline", fmt.Errorf("panic: %v", r), "adapter panicked while executing %s", desc.Name)
			payload = nil
			err = api.NewInternalError("internal error while executing tool %s", desc.Name)
		}
	}()

	payload, err = p.invoker.Invoke(ctx, desc.Handler, params, creds)
	if err != nil {
		return nil, api.Classify(err)
	}
	if payload == nil {
		payload = json.RawMessage("{}")
	}
	return payload, nil
}

// liftCredentials moves the reserved credential keys out of params into the
// request-level hints. Values in params outrank hints already set on the
// request. The caller's map is not modified.
func liftCredentials(params map[string]interface{}, hints api.CredentialHints) (map[string]interface{}, api.CredentialHints, []api.FieldError) {
	out := make(map[string]interface{}, len(params))
	var fields []api.FieldError

	for name, value := range params {
		var target *string
		switch name {
		case api.ParamAPIKey:
			target = &hints.APIKey
		case api.ParamTenantID:
			target = &hints.TenantID
		case api.ParamBaseURL:
			target = &hints.BaseURL
		default:
			out[name] = value
			continue
		}

		switch v := value.(type) {
		case nil:
		case string:
			if v != "" {
				*target = v
			}
		default:
			fields = append(fields, api.FieldError{Field: name, Message: "must be a string"})
		}
	}
	return out, hints, fields
}

// mergeFieldErrors folds extra field errors into a schema validation result
// so the caller sees every offending field at once.
func mergeFieldErrors(extra []api.FieldError, err error) error {
	fields := slices.Clone(extra)
	if apiErr, ok := api.AsError(err); ok && apiErr.Kind == api.KindValidation {
		fields = append(fields, apiErr.Fields...)
	} else if err != nil {
		return err
	}
	slices.SortStableFunc(fields, func(a, b api.FieldError) int { return strings.Compare(a.Field, b.Field) })
	return api.NewValidationError(fields)
}

package app

import (
	"context"
	"fmt"

	"falcon-mcp/internal/config"
	"falcon-mcp/internal/credentials"
	"falcon-mcp/internal/falcon"
	"falcon-mcp/internal/httpapi"
	"falcon-mcp/internal/mcpserver"
	"falcon-mcp/internal/observe"
	"falcon-mcp/internal/pipeline"
	"falcon-mcp/internal/registry"
	"falcon-mcp/internal/tools"
	"falcon-mcp/pkg/logging"
)

// transport is the lifecycle shared by both front ends.
type transport interface {
	Listen() error
	Serve(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Core holds the transport-agnostic components.
type Core struct {
	Registry *registry.Registry
	Resolver *credentials.Resolver
	Client   *falcon.Client
	Pipeline *pipeline.Pipeline
}

// NewCore builds and seals the registry, then wires the resolver, the Falcon
// client and the pipeline. m may be nil.
func NewCore(settings config.Config, env credentials.Environment, m *observe.Metrics) (*Core, error) {
	reg := registry.New()
	if err := tools.Register(reg); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	reg.Seal()
	logging.Debug("Bootstrap", "Registered %d tools", reg.Len())

	if m == nil {
		m = observe.NoopMetrics()
	}
	resolver := credentials.NewResolver(env)
	client := falcon.NewClient(settings.Upstream, falcon.WithMetrics(m))

	return &Core{
		Registry: reg,
		Resolver: resolver,
		Client:   client,
		Pipeline: pipeline.New(reg, resolver, client, pipeline.WithMetrics(m)),
	}, nil
}

// Services holds everything the application runs.
type Services struct {
	*Core

	Provider *observe.Provider
	MCP      *mcpserver.Server
	HTTP     *httpapi.Server
}

// InitializeServices wires the core and the transports enabled by
// settings.Mode.
func InitializeServices(ctx context.Context, cfg *Config, settings config.Config) (*Services, error) {
	env := credentials.FromEnv(cfg.Lookup)
	logging.Info("Bootstrap", "Credentials: %s client_secret=%s", env, logging.MaskSecret(env.ClientSecret))

	s := &Services{}

	var metrics *observe.Metrics
	if settings.Metrics.Enabled {
		provider, err := observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    "falcon-mcp",
			ServiceVersion: cfg.Version,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		s.Provider = provider
		metrics = provider.Metrics
	}

	core, err := NewCore(settings, env, metrics)
	if err != nil {
		return nil, err
	}
	s.Core = core

	if settings.Mode.MCPEnabled() {
		s.MCP = mcpserver.New(settings.MCP, core.Pipeline,
			mcpserver.WithVersion(cfg.Version),
			mcpserver.WithStdio(cfg.Stdin, cfg.Stdout),
		)
	}

	if settings.Mode.HTTPEnabled() {
		opts := []httpapi.Option{
			httpapi.WithVersion(cfg.Version),
			httpapi.WithReadiness(core.Client, readinessURL(env)),
		}
		if s.Provider != nil {
			opts = append(opts, httpapi.WithMetrics(s.Provider.Metrics, s.Provider.Handler))
		}
		s.HTTP = httpapi.NewServer(httpapi.NewHandler(settings.HTTP, core.Pipeline, opts...))
	}

	return s, nil
}

// transports returns the enabled front ends with their names.
func (s *Services) transports() map[string]transport {
	out := make(map[string]transport, 2)
	if s.MCP != nil {
		out["mcp"] = s.MCP
	}
	if s.HTTP != nil {
		out["http"] = s.HTTP
	}
	return out
}

func readinessURL(env credentials.Environment) string {
	if env.BaseURL != "" {
		return env.BaseURL
	}
	return credentials.DefaultBaseURL
}

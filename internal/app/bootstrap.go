package app

import (
	"context"
	"fmt"

	"falcon-mcp/internal/config"
	"falcon-mcp/internal/credentials"
	"falcon-mcp/pkg/logging"
)

// Application owns the resolved settings and the wired services.
type Application struct {
	config   *Config
	settings config.Config
	services *Services
}

// NewApplication loads configuration, initialises logging and wires every
// service. Nothing listens until Run.
func NewApplication(cfg *Config) (*Application, error) {
	cfg.withDefaults()

	// Early logger so configuration loading can report problems.
	logging.Init(logging.LevelInfo, logging.FormatText, cfg.LogOutput)

	settings, err := loadSettings(cfg)
	if err != nil {
		return nil, err
	}

	// Validate has already rejected unknown levels.
	level, _ := logging.ParseLevel(settings.Logging.Level)
	logging.Init(level, logging.Format(settings.Logging.Format), cfg.LogOutput)

	services, err := InitializeServices(context.Background(), cfg, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logging.Info("Bootstrap", "falcon-mcp %s configured: mode=%s", cfg.Version, settings.Mode)
	return &Application{config: cfg, settings: settings, services: services}, nil
}

// Settings returns the effective configuration.
func (a *Application) Settings() config.Config {
	return a.settings
}

// Services returns the wired services.
func (a *Application) Services() *Services {
	return a.services
}

func loadSettings(cfg *Config) (config.Config, error) {
	var settings config.Config
	if cfg.Settings != nil {
		settings = *cfg.Settings
	} else {
		loaded, err := config.Load(cfg.ConfigPath, cfg.Lookup)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
		}
		settings = loaded
	}

	cfg.Overrides.apply(&settings)
	if err := settings.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// NewCLICore loads configuration like NewApplication but wires only the
// dispatch core, for one-shot commands that run the pipeline in-process.
func NewCLICore(cfg *Config) (*Core, config.Config, error) {
	cfg.withDefaults()
	logging.Init(logging.LevelWarn, logging.FormatText, cfg.LogOutput)

	settings, err := loadSettings(cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	if cfg.Overrides.LogLevel != "" {
		level, _ := logging.ParseLevel(settings.Logging.Level)
		logging.Init(level, logging.Format(settings.Logging.Format), cfg.LogOutput)
	}

	core, err := NewCore(settings, credentials.FromEnv(cfg.Lookup), nil)
	if err != nil {
		return nil, config.Config{}, err
	}
	return core, settings, nil
}

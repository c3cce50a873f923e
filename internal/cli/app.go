package cli

import (
	"fmt"

	"github.com/logplatform/backend/internal/config"
	"github.com/logplatform/backend/internal/logging"
	"github.com/logplatform/backend/internal/logquery"
	"github.com/logplatform/backend/internal/registry"
	"github.com/logplatform/backend/internal/remote"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app is the wired set of components shared by serve and query.
type app struct {
	configPath string
	cfg        *config.AppConfig
	logger     *zap.Logger
	registry   *registry.Registry
	client     *remote.Client
	aggregator *remote.Aggregator
	engine     *logquery.Engine
}

// loadApp reads the config file, applies flag and LOGPLATFORM_* overrides
// and wires the engine.
func loadApp() (*app, error) {
	configPath := viper.GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg)

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	reg := registry.New()
	if err := reg.Load(cfg.Servers, cfg.Apps); err != nil {
		return nil, fmt.Errorf("failed to load bindings: %w", err)
	}

	client := remote.NewClient(cfg.RemoteTimeout(), logger)
	engine := logquery.NewEngine(logquery.Options{
		DefaultRoot:   cfg.FullLogPath(),
		DefaultPrefix: cfg.Logs.LogPrefix,
		Limits: logquery.Limits{
			PerFile: cfg.Engine.PerFileLimit,
			Total:   cfg.Engine.TotalLimit,
		},
		ReadCompressed: cfg.Engine.ReadCompressed,
	}, reg, client, logger)

	return &app{
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
		registry:   reg,
		client:     client,
		aggregator: remote.NewAggregator(client, reg, cfg.Remote.MaxConcurrent, logger),
		engine:     engine,
	}, nil
}

func applyOverrides(cfg *config.AppConfig) {
	if port := viper.GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	if level := viper.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if format := viper.GetString("log-format"); format != "" {
		cfg.Logging.Format = format
	}
}

// Package config provides YAML-based configuration for the log platform server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/logplatform/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Logs    LogsConfig    `yaml:"logs"`
	Engine  EngineConfig  `yaml:"engine"`
	Remote  RemoteConfig  `yaml:"remote"`
	Logging LoggingConfig `yaml:"logging"`

	// Bootstrap bindings loaded into the registry on startup
	Servers []models.ServerBinding `yaml:"servers"`
	Apps    []models.AppBinding    `yaml:"apps"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	EnableCORS   bool   `yaml:"enableCORS"`
	AllowOrigins string `yaml:"allowOrigins"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
	StaticDir    string `yaml:"staticDir"`
}

// LogsConfig locates the default local log stream
type LogsConfig struct {
	LogPath   string `yaml:"logPath"`
	AppName   string `yaml:"appName"`
	LogPrefix string `yaml:"logPrefix"`
}

// EngineConfig contains query engine limits
type EngineConfig struct {
	PerFileLimit   int  `yaml:"perFileLimit"`
	TotalLimit     int  `yaml:"totalLimit"`
	ReadCompressed bool `yaml:"readCompressed"`
}

// RemoteConfig contains peer call settings
type RemoteConfig struct {
	TimeoutSeconds int `yaml:"timeoutSeconds"`
	MaxConcurrent  int `yaml:"maxConcurrent"`
}

// LoggingConfig contains application logging settings
type LoggingConfig struct {
	Level                string `yaml:"level"`
	Format               string `yaml:"format"` // "console" or "json"
	EnableRequestLogging bool   `yaml:"enableRequestLogging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8080,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
		},
		Logs: LogsConfig{
			LogPath:   "./data/logs",
			AppName:   "task-center",
			LogPrefix: "task-center-info",
		},
		Engine: EngineConfig{
			PerFileLimit: 2000,
			TotalLimit:   5000,
		},
		Remote: RemoteConfig{
			TimeoutSeconds: 10,
			MaxConcurrent:  16,
		},
		Logging: LoggingConfig{
			Level:                "info",
			Format:               "console",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Log Platform configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if logPath := os.Getenv("LOG_PATH"); logPath != "" {
		c.Logs.LogPath = logPath
	}
	if appName := os.Getenv("APP_NAME"); appName != "" {
		c.Logs.AppName = appName
	}
	if prefix := os.Getenv("LOG_PREFIX"); prefix != "" {
		c.Logs.LogPrefix = prefix
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if c.Logs.LogPath != "" && !filepath.IsAbs(c.Logs.LogPath) {
		c.Logs.LogPath = filepath.Join(configDir, c.Logs.LogPath)
	}
	if c.Server.StaticDir != "" && !filepath.IsAbs(c.Server.StaticDir) {
		c.Server.StaticDir = filepath.Join(configDir, c.Server.StaticDir)
	}
	for i := range c.Apps {
		if c.Apps[i].LogPath != "" && !filepath.IsAbs(c.Apps[i].LogPath) {
			c.Apps[i].LogPath = filepath.Join(configDir, c.Apps[i].LogPath)
		}
	}
}

// Validate checks values that would otherwise fail at request time
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Logs.LogPrefix == "" {
		errs = append(errs, errors.New("logs.logPrefix is required"))
	}
	if c.Engine.PerFileLimit < 0 || c.Engine.TotalLimit < 0 {
		errs = append(errs, errors.New("engine limits must not be negative"))
	}
	for _, s := range c.Servers {
		if s.Host == "" {
			errs = append(errs, fmt.Errorf("server %q has no host", s.ID))
		}
	}
	for _, a := range c.Apps {
		if a.LogPath == "" || a.LogPrefix == "" {
			errs = append(errs, fmt.Errorf("app %q needs logPath and logPrefix", a.ID))
		}
	}
	return errors.Join(errs...)
}

// FullLogPath returns the directory of the default log stream
func (c *AppConfig) FullLogPath() string {
	return filepath.Join(c.Logs.LogPath, c.Logs.AppName)
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// RemoteTimeout returns the per-peer call deadline
func (c *AppConfig) RemoteTimeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

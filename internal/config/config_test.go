package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "task-center-info", cfg.Logs.LogPrefix)
	assert.Equal(t, 2000, cfg.Engine.PerFileLimit)
	assert.Equal(t, 5000, cfg.Engine.TotalLimit)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout())
	assert.Equal(t, filepath.Join(dir, "conf", "data", "logs", "task-center"), cfg.FullLogPath())
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
  staticDir: web
logs:
  logPath: /var/log
  appName: billing
  logPrefix: billing-info
engine:
  perFileLimit: 100
  readCompressed: true
remote:
  timeoutSeconds: 3
servers:
  - id: server-1
    name: east
    host: 10.0.0.2
    port: 8080
  - id: server-2
    host: logs.example.com
    virtual: billing
apps:
  - id: app-1
    serverId: server-1
    logPath: logs/billing
    logPrefix: billing-info
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, filepath.Join(dir, "web"), cfg.Server.StaticDir)
	assert.Equal(t, "/var/log/billing", cfg.FullLogPath())
	assert.Equal(t, 100, cfg.Engine.PerFileLimit)
	assert.Equal(t, 5000, cfg.Engine.TotalLimit, "unset keys keep their defaults")
	assert.True(t, cfg.Engine.ReadCompressed)
	assert.Equal(t, 3*time.Second, cfg.RemoteTimeout())

	require.Len(t, cfg.Servers, 2)
	assert.Equal(t, "east", cfg.Servers[0].Name)
	assert.Equal(t, "billing", cfg.Servers[1].Virtual)
	require.Len(t, cfg.Apps, 1)
	assert.Equal(t, filepath.Join(dir, "logs", "billing"), cfg.Apps[0].LogPath)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))

	t.Setenv("PORT", "7070")
	t.Setenv("LOG_PATH", "/srv/logs")
	t.Setenv("APP_NAME", "orders")
	t.Setenv("LOG_PREFIX", "orders-info")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/logs/orders", cfg.FullLogPath())
	assert.Equal(t, "orders-info", cfg.Logs.LogPrefix)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "server: [port"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"empty prefix", "logs:\n  logPrefix: \"\"\n"},
		{"server without host", "servers:\n  - id: s1\n"},
		{"app without prefix", "apps:\n  - id: a1\n    logPath: /x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestGetServerAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.BindAddress = "127.0.0.1"
	cfg.Server.Port = 8181
	assert.Equal(t, "127.0.0.1:8181", cfg.GetServerAddr())
}

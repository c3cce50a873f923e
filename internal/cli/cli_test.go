package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/logplatform/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig lays out a config file and a log directory next to it.
func writeTestConfig(t *testing.T) (configPath, logDir string) {
	dir := t.TempDir()
	logDir = filepath.Join(dir, "logs", "svc")
	require.NoError(t, os.MkdirAll(logDir, 0755))

	configPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
server:
  port: 18080
logs:
  logPath: logs
  appName: svc
  logPrefix: svc-info
logging:
  level: error
servers:
  - id: server-1
    host: 127.0.0.1
    port: 1
apps:
  - id: app-1
    serverId: server-1
    logPath: logs/svc
    logPrefix: svc-info
`), 0644))
	return configPath, logDir
}

// setFlag sets a persistent flag, which viper reads through its binding,
// and restores the previous value when the test ends.
func setFlag(t *testing.T, name, value string) {
	t.Helper()
	flags := rootCmd.PersistentFlags()
	prev := flags.Lookup(name).Value.String()
	require.NoError(t, flags.Set(name, value))
	t.Cleanup(func() { _ = flags.Set(name, prev) })
}

func TestLoadApp(t *testing.T) {
	configPath, logDir := writeTestConfig(t)
	setFlag(t, "config", configPath)
	setFlag(t, "port", "19090")
	setFlag(t, "log-level", "warn")

	a, err := loadApp()
	require.NoError(t, err)

	assert.Equal(t, 19090, a.cfg.Server.Port)
	assert.Equal(t, "warn", a.cfg.Logging.Level)
	assert.Equal(t, logDir, a.cfg.FullLogPath())
	assert.Len(t, a.registry.ListServers(), 1)
	assert.Len(t, a.registry.ListApps(), 1)
}

func TestLoadApp_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apps:\n  - id: a1\n    serverId: ghost\n    logPath: /x\n    logPrefix: p\n"), 0644))
	setFlag(t, "config", path)

	_, err := loadApp()
	assert.Error(t, err)
}

func TestNewEcho_ServesAPI(t *testing.T) {
	configPath, logDir := writeTestConfig(t)
	setFlag(t, "config", configPath)
	testutil.WriteLog(t, logDir, "svc-info.2026-01-17.1.log",
		"2026-01-17 10:00:00 [INFO] order 42 received",
		"2026-01-17 10:05:00 [INFO] order 43 received",
	)

	a, err := loadApp()
	require.NoError(t, err)
	e, staticMode := newEcho(a)
	assert.False(t, staticMode)

	req := httptest.NewRequest(http.MethodGet, "/api/logs/query?date=2026-01-17&keyword=order%2042", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"success","data":["2026-01-17 10:00:00 [INFO] order 42 received"]}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestQueryCommand(t *testing.T) {
	configPath, logDir := writeTestConfig(t)
	setFlag(t, "config", configPath)
	testutil.WriteLog(t, logDir, "svc-info.2026-01-17.1.log",
		"2026-01-17 09:59:00 [INFO] early",
		"2026-01-17 10:00:00 [INFO] in window",
		"2026-01-17 10:31:00 [INFO] late",
	)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"query", "--config", configPath, "--date", "2026-01-17", "--start", "10:00", "--end", "10:30"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "2026-01-17 10:00:00 [INFO] in window\n", out.String())
}

func TestQueryCommand_RejectsBadTime(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	setFlag(t, "config", configPath)

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"query", "--config", configPath, "--date", "2026-01-17", "--start", "25:00"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Error(t, rootCmd.Execute())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bryanchriswhite/FocusBridge/internal/screenshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1", cfg.Server.BindAddress)
	assert.Equal(t, uint16(9223), cfg.Server.BasePort)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, uint32(0), cfg.Screenshot.MaxWidth)
	assert.Equal(t, "png", cfg.Screenshot.Format)
	assert.Equal(t, 85, cfg.Screenshot.Quality)
	assert.Equal(t, "lanczos3", cfg.Screenshot.Filter)
	assert.Equal(t, 1.0, cfg.Window.ScaleFactor)
	assert.Equal(t, "auto", cfg.Window.Backend)
}

func TestNewManager_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	m, err := NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, path, m.GetConfigPath())
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk Config
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, uint16(9223), onDisk.Server.BasePort)
	assert.Equal(t, *Defaults(), *m.Get())
}

func TestNewManager_ReadsFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
server:
  base_port: 9400
  request_timeout: 5s
screenshot:
  max_width: 1280
  format: jpeg
  quality: 70
window:
  main_pattern: "^Code$"
  scale_factor: 2
`)

	m, err := NewManager(path)
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, uint16(9400), cfg.Server.BasePort)
	assert.Equal(t, "127.0.0.1", cfg.Server.BindAddress)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, uint32(1280), cfg.Screenshot.MaxWidth)
	assert.Equal(t, "jpeg", cfg.Screenshot.Format)
	assert.Equal(t, 70, cfg.Screenshot.Quality)
	assert.Equal(t, "lanczos3", cfg.Screenshot.Filter)

	opts := m.WindowOptions()
	assert.Equal(t, "^Code$", opts.MainPattern)
	assert.Equal(t, 2.0, opts.ScaleFactor)

	settings := m.ScreenshotSettings()
	assert.Equal(t, uint32(1280), settings.DefaultMaxWidth)
	assert.Equal(t, screenshot.FilterLanczos3, settings.Filter)
}

func TestNewManager_EnvMaxWidth(t *testing.T) {
	path := writeConfig(t, "screenshot:\n  max_width: 1280\n")

	t.Setenv("FOCUSBRIDGE_SCREENSHOT_MAX_WIDTH", "800")
	m, err := NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(800), m.ScreenshotSettings().DefaultMaxWidth)

	t.Setenv("FOCUSBRIDGE_SCREENSHOT_MAX_WIDTH", "wide")
	m, err = NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), m.ScreenshotSettings().DefaultMaxWidth)

	t.Setenv("FOCUSBRIDGE_SCREENSHOT_MAX_WIDTH", "-5")
	m, err = NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), m.ScreenshotSettings().DefaultMaxWidth)
}

func TestScreenshotSettings_ReadsEnvPerCall(t *testing.T) {
	m, err := NewManager(writeConfig(t, "log_level: info\n"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), m.ScreenshotSettings().DefaultMaxWidth)

	t.Setenv("FOCUSBRIDGE_SCREENSHOT_MAX_WIDTH", "640")
	assert.Equal(t, uint32(640), m.ScreenshotSettings().DefaultMaxWidth)
	got, err := m.GetString("screenshot.max_width")
	require.NoError(t, err)
	assert.Equal(t, "640", got)

	t.Setenv("FOCUSBRIDGE_SCREENSHOT_MAX_WIDTH", "wide")
	assert.Equal(t, uint32(0), m.ScreenshotSettings().DefaultMaxWidth)
}

func TestNewManager_EnvOverridesNested(t *testing.T) {
	path := writeConfig(t, "server:\n  base_port: 9400\n")
	t.Setenv("FOCUSBRIDGE_SERVER_BASE_PORT", "9500")

	m, err := NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(9500), m.Get().Server.BasePort)
}

func TestNewManager_Invalid(t *testing.T) {
	tests := map[string]string{
		"quality":      "screenshot:\n  quality: 150\n",
		"format":       "screenshot:\n  format: webp\n",
		"filter":       "screenshot:\n  filter: nearest\n",
		"scale factor": "window:\n  scale_factor: 0\n",
		"log level":    "log_level: loud\n",
		"yaml":         "server: [\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewManager(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestSet(t *testing.T) {
	path := writeConfig(t, "log_level: info\n")
	m, err := NewManager(path)
	require.NoError(t, err)

	require.NoError(t, m.Set("screenshot.max_width", "1024"))
	assert.Equal(t, uint32(1024), m.Get().Screenshot.MaxWidth)

	got, err := m.GetString("screenshot.max_width")
	require.NoError(t, err)
	assert.Equal(t, "1024", got)

	require.NoError(t, m.SetPort(9300))
	require.NoError(t, m.SetLogLevel("warn"))

	assert.Error(t, m.Set("screenshot.max_width", "lots"))
	assert.Error(t, m.Set("screenshot.quality", "101"))
	assert.Equal(t, 85, m.Get().Screenshot.Quality)
	assert.Error(t, m.Set("no.such.key", "1"))
	_, err = m.GetString("no.such.key")
	assert.Error(t, err)

	// Persisted
	reloaded, err := NewManager(path)
	require.NoError(t, err)
	cfg := reloaded.Get()
	assert.Equal(t, uint32(1024), cfg.Screenshot.MaxWidth)
	assert.Equal(t, uint16(9300), cfg.Server.BasePort)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestSet_PersistsOnlyTheKey(t *testing.T) {
	path := writeConfig(t, "log_level: info\n")
	t.Setenv("FOCUSBRIDGE_SCREENSHOT_MAX_WIDTH", "640")
	t.Setenv("FOCUSBRIDGE_SERVER_BASE_PORT", "9500")

	m, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m.Set("log_level", "debug"))
	require.NoError(t, m.Set("window.scale_factor", "1.5"))
	assert.Equal(t, "debug", m.Get().LogLevel)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]any
	require.NoError(t, yaml.Unmarshal(data, &onDisk))

	assert.Equal(t, "debug", onDisk["log_level"])
	assert.NotContains(t, onDisk, "screenshot")
	assert.NotContains(t, onDisk, "server")
	require.Contains(t, onDisk, "window")
	assert.Equal(t, 1.5, onDisk["window"].(map[string]any)["scale_factor"])

	os.Unsetenv("FOCUSBRIDGE_SCREENSHOT_MAX_WIDTH")
	os.Unsetenv("FOCUSBRIDGE_SERVER_BASE_PORT")
	reloaded, err := NewManager(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), reloaded.Get().Screenshot.MaxWidth)
	assert.Equal(t, uint16(9223), reloaded.Get().Server.BasePort)
	assert.Equal(t, 1.5, reloaded.Get().Window.ScaleFactor)
}

func TestTypedValue(t *testing.T) {
	assert.Equal(t, 9300, typedValue("server.base_port", "9300"))
	assert.Equal(t, true, typedValue("log_pretty", "true"))
	assert.Equal(t, "45s", typedValue("server.request_timeout", "45s"))
	// String keys stay verbatim even when they look like YAML
	assert.Equal(t, "[a-z]+: #x", typedValue("window.main_pattern", "[a-z]+: #x"))
	assert.Equal(t, "8080", typedValue("server.bind_address", "8080"))
}

func TestReload(t *testing.T) {
	path := writeConfig(t, "screenshot:\n  max_width: 1000\n")
	m, err := NewManager(path)
	require.NoError(t, err)

	var notified *Config
	m.OnChange(func(cfg *Config) { notified = cfg })

	require.NoError(t, os.WriteFile(path, []byte("screenshot:\n  max_width: 640\n"), 0644))
	require.NoError(t, m.GetViper().ReadInConfig())
	m.reload(path)

	assert.Equal(t, uint32(640), m.ScreenshotSettings().DefaultMaxWidth)
	require.NotNil(t, notified)
	assert.Equal(t, uint32(640), notified.Screenshot.MaxWidth)

	// A broken file keeps the previous config
	require.NoError(t, os.WriteFile(path, []byte("screenshot:\n  max_width: 640\n  quality: 500\n"), 0644))
	require.NoError(t, m.GetViper().ReadInConfig())
	m.reload(path)
	assert.Equal(t, uint32(640), m.ScreenshotSettings().DefaultMaxWidth)
	assert.Equal(t, 85, m.Get().Screenshot.Quality)
}

func TestIsKey(t *testing.T) {
	assert.True(t, IsKey("screenshot.max_width"))
	assert.False(t, IsKey("screenshot"))
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bryanchriswhite/FocusBridge/internal/logger"
	"github.com/bryanchriswhite/FocusBridge/internal/screenshot"
	"github.com/bryanchriswhite/FocusBridge/internal/window"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g.
// FOCUSBRIDGE_SCREENSHOT_MAX_WIDTH for screenshot.max_width
const EnvPrefix = "FOCUSBRIDGE"

// Manager handles configuration
type Manager struct {
	configPath string
	v          *viper.Viper
	validate   *validator.Validate

	mu       sync.RWMutex
	config   *Config
	onChange []func(*Config)
}

// DefaultConfigPath returns $HOME/.config/focusbridge/config.yaml
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "focusbridge", "config.yaml"), nil
}

// NewManager creates a new configuration manager. A missing config file is
// created with defaults.
func NewManager(configFile string) (*Manager, error) {
	configPath := configFile
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}

	m := &Manager{
		configPath: configPath,
		v:          v,
		validate:   validator.New(),
	}

	log := logger.WithComponent("config")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Info().
			Str("path", configPath).
			Msg("Config file not found, creating new config")
		if err := m.writeFile(Defaults()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := m.decode()
	if err != nil {
		return nil, err
	}
	m.config = cfg

	log.Info().
		Str("path", configPath).
		Uint16("base_port", cfg.Server.BasePort).
		Uint32("max_width", cfg.Screenshot.MaxWidth).
		Msg("Config loaded")

	return m, nil
}

// decode builds a validated Config from the current viper state
func (m *Manager) decode() (*Config, error) {
	cfg := &Config{}
	if err := m.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Screenshot.MaxWidth = m.maxWidth()

	if err := m.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// parseMaxWidth reads the default width ceiling. Anything that is not a
// non-negative 32-bit integer counts as absent.
func parseMaxWidth(raw string) uint32 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		logger.WithComponent("config").Warn().
			Str("value", raw).
			Msg("Ignoring unparseable screenshot.max_width")
		return 0
	}
	return uint32(n)
}

// Watch reloads the config whenever the file changes. A file that fails to
// parse or validate is logged and the previous config is kept.
func (m *Manager) Watch() {
	m.v.OnConfigChange(func(e fsnotify.Event) {
		m.reload(e.Name)
	})
	m.v.WatchConfig()
}

func (m *Manager) reload(source string) {
	log := logger.WithComponent("config")

	if err := m.Reload(); err != nil {
		log.Error().Err(err).Str("file", source).Msg("Config reload failed, keeping previous config")
		return
	}
	log.Info().Str("file", source).Msg("Config reloaded")
}

// Reload rebuilds the config from viper's current state, e.g. after binding
// command line flags, and notifies OnChange listeners. On error the previous
// config stays in place.
func (m *Manager) Reload() error {
	cfg, err := m.decode()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.config = cfg
	listeners := append([]func(*Config){}, m.onChange...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// OnChange registers fn to run after every successful reload
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return Defaults()
	}
	cfg := *m.config
	return &cfg
}

// GetViper exposes the underlying viper instance for flag binding
func (m *Manager) GetViper() *viper.Viper {
	return m.v
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// GetString returns the raw value of key after file, env and flag merging
func (m *Manager) GetString(key string) (string, error) {
	if !IsKey(key) {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	if key == "screenshot.max_width" {
		return strconv.FormatUint(uint64(m.maxWidth()), 10), nil
	}
	return m.v.GetString(key), nil
}

// maxWidth reads the default width ceiling from viper on every call so a
// changed FOCUSBRIDGE_SCREENSHOT_MAX_WIDTH applies to the next capture
func (m *Manager) maxWidth() uint32 {
	return parseMaxWidth(m.v.GetString("screenshot.max_width"))
}

// Set validates key and writes it, and only it, to the config file. Values
// coming from the environment or flags are not persisted.
func (m *Manager) Set(key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("unknown config key: %s", key)
	}
	if key == "screenshot.max_width" {
		if _, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32); err != nil {
			return fmt.Errorf("invalid screenshot.max_width %q: must be a non-negative integer", value)
		}
	}

	previous := m.v.Get(key)
	m.v.Set(key, value)

	cfg, err := m.decode()
	if err != nil {
		m.v.Set(key, previous)
		return err
	}

	if err := m.persistKey(key, value); err != nil {
		m.v.Set(key, previous)
		return err
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// persistKey rewrites the config file with key changed. The file is read
// into its own viper so env and flag overrides stay out of it.
func (m *Manager) persistKey(key, value string) error {
	file := viper.New()
	file.SetConfigFile(m.configPath)
	file.SetConfigType("yaml")
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	file.Set(key, typedValue(key, value))
	return m.writeFile(file.AllSettings())
}

// typedValue converts value to the YAML type of key's default, so numbers
// and booleans are not written as strings
func typedValue(key, value string) any {
	if _, isString := defaultValues()[key].(string); isString {
		return value
	}
	var typed any
	if err := yaml.Unmarshal([]byte(value), &typed); err != nil || typed == nil {
		return value
	}
	switch typed.(type) {
	case map[string]any, []any:
		return value
	}
	return typed
}

// SetPort sets the base port tried by port discovery
func (m *Manager) SetPort(port uint16) error {
	return m.Set("server.base_port", strconv.FormatUint(uint64(port), 10))
}

// SetLogLevel sets the log level
func (m *Manager) SetLogLevel(level string) error {
	return m.Set("log_level", level)
}

// writeFile marshals v as YAML into the config file
func (m *Manager) writeFile(v any) error {
	log := logger.WithComponent("config")

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		log.Error().
			Err(err).
			Str("path", m.configPath).
			Msg("Failed to write config")
		return err
	}

	log.Debug().Str("path", m.configPath).Msg("Config saved")
	return nil
}

// ScreenshotSettings returns the pipeline settings of the current config
func (m *Manager) ScreenshotSettings() screenshot.Settings {
	cfg := m.Get()
	filter, err := screenshot.ParseFilter(cfg.Screenshot.Filter)
	if err != nil {
		filter = screenshot.DefaultFilter
	}
	return screenshot.Settings{
		DefaultMaxWidth: m.maxWidth(),
		Filter:          filter,
	}
}

// WindowOptions returns the window manager options of the current config
func (m *Manager) WindowOptions() window.Options {
	cfg := m.Get()
	return window.Options{
		MainPattern: cfg.Window.MainPattern,
		ScaleFactor: cfg.Window.ScaleFactor,
	}
}

// LoggerOptions returns the logger options of the given config
func LoggerOptions(cfg *Config) logger.Options {
	return logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		File:   cfg.LogFile,
	}
}

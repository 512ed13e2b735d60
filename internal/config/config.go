package config

import (
	"time"

	"github.com/creasty/defaults"
)

// Config represents the application configuration
type Config struct {
	LogLevel  string `json:"log_level" yaml:"log_level" mapstructure:"log_level" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogPretty bool   `json:"log_pretty" yaml:"log_pretty" mapstructure:"log_pretty"`
	LogFile   string `json:"log_file" yaml:"log_file" mapstructure:"log_file"`

	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Screenshot ScreenshotConfig `json:"screenshot" yaml:"screenshot" mapstructure:"screenshot"`
	Window     WindowConfig     `json:"window" yaml:"window" mapstructure:"window"`
}

// ServerConfig configures the bridge listener
type ServerConfig struct {
	BindAddress    string        `json:"bind_address" yaml:"bind_address" mapstructure:"bind_address" default:"127.0.0.1" validate:"required,ip|hostname"`
	BasePort       uint16        `json:"base_port" yaml:"base_port" mapstructure:"base_port" default:"9223" validate:"min=1"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout" default:"30s" validate:"gt=0"`
}

// ScreenshotConfig holds the capture pipeline defaults
type ScreenshotConfig struct {
	// MaxWidth is parsed by hand so an unparseable value degrades to "no
	// default" instead of failing the whole load. Zero means no default.
	MaxWidth uint32 `json:"max_width" yaml:"max_width" mapstructure:"-"`
	Format   string `json:"format" yaml:"format" mapstructure:"format" default:"png" validate:"oneof=png jpeg jpg"`
	Quality  int    `json:"quality" yaml:"quality" mapstructure:"quality" default:"85" validate:"min=0,max=100"`
	Filter   string `json:"filter" yaml:"filter" mapstructure:"filter" default:"lanczos3" validate:"oneof=lanczos3 mitchell catmullrom bilinear"`
}

// WindowConfig tunes window resolution and resizing
type WindowConfig struct {
	// Backend selects the window backend: auto, x11, kwin, screen or display
	Backend     string  `json:"backend" yaml:"backend" mapstructure:"backend" default:"auto" validate:"oneof=auto x11 kwin screen display"`
	MainPattern string  `json:"main_pattern" yaml:"main_pattern" mapstructure:"main_pattern"`
	ScaleFactor float64 `json:"scale_factor" yaml:"scale_factor" mapstructure:"scale_factor" default:"1.0" validate:"gt=0"`
}

// Defaults returns the default configuration
func Defaults() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// Only reachable with a malformed default tag
		panic(err)
	}
	return cfg
}

// Keys lists every settable configuration key
var Keys = []string{
	"log_level",
	"log_pretty",
	"log_file",
	"server.bind_address",
	"server.base_port",
	"server.request_timeout",
	"screenshot.max_width",
	"screenshot.format",
	"screenshot.quality",
	"screenshot.filter",
	"window.backend",
	"window.main_pattern",
	"window.scale_factor",
}

// IsKey reports whether key is a known configuration key
func IsKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// defaultValues flattens Defaults() into viper keys
func defaultValues() map[string]any {
	d := Defaults()
	return map[string]any{
		"log_level":              d.LogLevel,
		"log_pretty":             d.LogPretty,
		"log_file":               d.LogFile,
		"server.bind_address":    d.Server.BindAddress,
		"server.base_port":       d.Server.BasePort,
		"server.request_timeout": d.Server.RequestTimeout,
		"screenshot.max_width":   d.Screenshot.MaxWidth,
		"screenshot.format":      d.Screenshot.Format,
		"screenshot.quality":     d.Screenshot.Quality,
		"screenshot.filter":      d.Screenshot.Filter,
		"window.backend":         d.Window.Backend,
		"window.main_pattern":    d.Window.MainPattern,
		"window.scale_factor":    d.Window.ScaleFactor,
	}
}

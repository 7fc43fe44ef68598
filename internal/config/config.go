package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "EVENTHUB_"

// Errors returned by Load and Validate.
var (
	// ErrUnsupportedFormat is returned for config files that are neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrInvalidConfig is returned when a setting has an invalid value.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds the command settings.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level" env:"LOG_LEVEL"`

	// LogFormat is text, json or auto. Auto picks text on a terminal.
	LogFormat string `toml:"log_format" yaml:"log_format" env:"LOG_FORMAT"`

	// MetricsAddr is the listen address of the /metrics endpoint in watch
	// mode. Empty disables it.
	MetricsAddr string `toml:"metrics_addr" yaml:"metrics_addr" env:"METRICS_ADDR"`

	// OTelEndpoint is the OTLP/HTTP collector endpoint. Empty disables
	// tracing export.
	OTelEndpoint string `toml:"otel_endpoint" yaml:"otel_endpoint" env:"OTEL_ENDPOINT"`

	// ServiceName is reported on traces.
	ServiceName string `toml:"service_name" yaml:"service_name" env:"SERVICE_NAME"`

	// WatchDebounce delays reruns after a file change in watch mode.
	WatchDebounce Duration `toml:"watch_debounce" yaml:"watch_debounce" env:"WATCH_DEBOUNCE"`

	// LuaTimeout bounds one Lua script run. Zero disables the bound.
	LuaTimeout Duration `toml:"lua_timeout" yaml:"lua_timeout" env:"LUA_TIMEOUT"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "auto",
		ServiceName:   "eventhub",
		WatchDebounce: Duration(200 * time.Millisecond),
		LuaTimeout:    Duration(5 * time.Second),
	}
}

// Load reads the config file at path over the defaults, applies environment
// overrides and validates the result. An empty path or a missing file leaves
// the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "auto":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("%w: service_name is empty", ErrInvalidConfig)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("%w: watch_debounce is negative", ErrInvalidConfig)
	}
	if c.LuaTimeout < 0 {
		return fmt.Errorf("%w: lua_timeout is negative", ErrInvalidConfig)
	}
	return nil
}

// ParseError reports a malformed config file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Duration is a time.Duration read from strings such as "250ms" in TOML,
// YAML and the environment.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String implements fmt.Stringer.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

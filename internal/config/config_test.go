package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.LogFormat)
	assert.Equal(t, "eventhub", cfg.ServiceName)
	assert.Equal(t, 200*time.Millisecond, cfg.WatchDebounce.Std())
	assert.Equal(t, 5*time.Second, cfg.LuaTimeout.Std())
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "eventhub.toml", `
log_level = "debug"
log_format = "json"
metrics_addr = ":9090"
watch_debounce = "1s"
lua_timeout = "250ms"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, time.Second, cfg.WatchDebounce.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.LuaTimeout.Std())
	assert.Equal(t, "eventhub", cfg.ServiceName, "unset keys keep their defaults")
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "eventhub.yml", `
log_level: warn
otel_endpoint: localhost:4318
service_name: doors
watch_debounce: 50ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "localhost:4318", cfg.OTelEndpoint)
	assert.Equal(t, "doors", cfg.ServiceName)
	assert.Equal(t, 50*time.Millisecond, cfg.WatchDebounce.Std())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "eventhub.toml", `log_level = "debug"`)
	t.Setenv("EVENTHUB_LOG_LEVEL", "error")
	t.Setenv("EVENTHUB_LUA_TIMEOUT", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.LuaTimeout.Std())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("unsupported format", func(t *testing.T) {
		_, err := Load(writeFile(t, "eventhub.json", `{}`))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := writeFile(t, "eventhub.toml", `log_level = `)
		_, err := Load(path)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, path, parseErr.Path)
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := Load(writeFile(t, "eventhub.yaml", `lua_timeout: soon`))
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := Load(writeFile(t, "eventhub.toml", `log_format = "xml"`))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("bad env", func(t *testing.T) {
		t.Setenv("EVENTHUB_WATCH_DEBOUNCE", "later")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"upper case level", func(c *Config) { c.LogLevel = "DEBUG" }, true},
		{"warning alias", func(c *Config) { c.LogLevel = "warning" }, true},
		{"unknown level", func(c *Config) { c.LogLevel = "trace" }, false},
		{"unknown format", func(c *Config) { c.LogFormat = "xml" }, false},
		{"empty service", func(c *Config) { c.ServiceName = " " }, false},
		{"negative debounce", func(c *Config) { c.WatchDebounce = -1 }, false},
		{"negative timeout", func(c *Config) { c.LuaTimeout = -1 }, false},
		{"zero timeout", func(c *Config) { c.LuaTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("90")))
}

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/eventhub/internal/config"
	"github.com/dshills/eventhub/internal/logging"
	"github.com/dshills/eventhub/internal/metrics"
	"github.com/dshills/eventhub/internal/tracing"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, options{LogLevel: "debug", MetricsAddr: ":9090"})

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "auto", cfg.LogFormat, "unset flags keep config values")
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func newTestRunner(t *testing.T, name, content string) *runner {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return &runner{
		cfg:     config.Default(),
		file:    path,
		logger:  logging.Discard(),
		metrics: metrics.New(),
		tracing: tracing.New(nil),
	}
}

func TestRunner_Scenario(t *testing.T) {
	pass := newTestRunner(t, "pass.yaml", `
steps:
  - on: {type: open, handler: h}
  - emit: {type: open}
  - expect: {calls: [h]}
`)
	assert.True(t, pass.runOnce(context.Background()))

	fail := newTestRunner(t, "fail.yaml", `
steps:
  - emit: {type: open}
  - expect: {calls: [h]}
`)
	assert.False(t, fail.runOnce(context.Background()))
}

func TestRunner_Script(t *testing.T) {
	pass := newTestRunner(t, "pass.lua", `
		local n = 0
		hub.on("open", function() n = n + 1 end)
		hub.emit("open")
		assert(n == 1)
	`)
	assert.True(t, pass.runOnce(context.Background()))

	fail := newTestRunner(t, "fail.lua", `error("nope")`)
	assert.False(t, fail.runOnce(context.Background()))
}

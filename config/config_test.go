package config_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/amp-labs/tickfsm/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFrom[config.App](map[string]string{})
	require.NoError(t, err)

	assert.False(t, cfg.Logging.JSON)
	assert.Equal(t, slog.LevelInfo, cfg.Logging.Level)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "fsmdemo", cfg.Telemetry.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.Telemetry.Timeout)
	assert.Empty(t, cfg.Telemetry.Endpoint)
	assert.Equal(t, 0, cfg.Fleet.Workers)
	assert.Equal(t, "127.0.0.1:8080", cfg.Inspector.Addr)
	assert.Equal(t, 100*time.Millisecond, cfg.Inspector.TickInterval)
	assert.False(t, cfg.CLI.NoBanner)
}

func TestLoadFromValues(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFrom[config.App](map[string]string{
		"LOG_JSON":                    "true",
		"LOG_LEVEL":                   "warn",
		"LOG_OUTPUT":                  "stderr",
		"OTEL_ENABLED":                "true",
		"OTEL_LOGS_ENABLED":           "true",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "http://collector:4318",
		"OTEL_EXPORTER_OTLP_TIMEOUT":  "2s",
		"FLEET_WORKERS":               "8",
		"INSPECTOR_TICK_INTERVAL":     "1s",
		"NO_BANNER":                   "true",
	})
	require.NoError(t, err)

	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, slog.LevelWarn, cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.True(t, cfg.Telemetry.LogsEnabled)
	assert.Equal(t, "http://collector:4318", cfg.Telemetry.Endpoint)
	assert.Equal(t, 2*time.Second, cfg.Telemetry.Timeout)
	assert.Equal(t, 8, cfg.Fleet.Workers)
	assert.Equal(t, time.Second, cfg.Inspector.TickInterval)
	assert.True(t, cfg.CLI.NoBanner)
}

func TestLoadFromInvalid(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFrom[config.Logging](map[string]string{"LOG_LEVEL": "loud"})
	require.ErrorIs(t, err, config.ErrParsingConfig)

	_, err = config.LoadFrom[config.Fleet](map[string]string{"FLEET_WORKERS": "many"})
	require.ErrorIs(t, err, config.ErrParsingConfig)
}

func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		original, ok := os.LookupEnv(key)
		_ = os.Unsetenv(key)

		t.Cleanup(func() {
			if ok {
				_ = os.Setenv(key, original)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}
}

//nolint:paralleltest // Test modifies the process environment
func TestLoadEnvFile(t *testing.T) {
	unsetForTest(t, "LOG_JSON", "LOG_LEVEL", "INSPECTOR_ADDR")
	t.Setenv("FLEET_WORKERS", "5")

	cfg, err := config.Load[config.App](nil, "testdata/.env.test")
	require.NoError(t, err)

	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.Level)
	assert.Equal(t, ":9090", cfg.Inspector.Addr)
	assert.Equal(t, 5, cfg.Fleet.Workers, "the environment wins over the file")
}

//nolint:paralleltest // Test reads the process environment
func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load[config.App](nil, "testdata/.env.missing")
	require.ErrorIs(t, err, config.ErrLoadingEnvFile)
}

//nolint:paralleltest // Test modifies the process environment
func TestLoadOverrides(t *testing.T) {
	unsetForTest(t, "LOG_JSON", "LOG_LEVEL", "INSPECTOR_ADDR")
	t.Setenv("FLEET_WORKERS", "5")

	cfg, err := config.Load[config.App](map[string]string{
		"FLEET_WORKERS": "2",
		"LOG_LEVEL":     "error",
	}, "testdata/.env.test")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Fleet.Workers, "overrides win over the environment")
	assert.Equal(t, slog.LevelError, cfg.Logging.Level, "overrides win over the file")
	assert.True(t, cfg.Logging.JSON)

	_, err = config.Load[config.Fleet](map[string]string{"FLEET_WORKERS": "many"})
	require.ErrorIs(t, err, config.ErrParsingConfig)
}

//nolint:paralleltest // Test reads the process environment
func TestLoadDefaultFileIsOptional(t *testing.T) {
	_, err := config.Load[config.Fleet](nil)
	require.NoError(t, err)
}

// Package config loads process configuration from the environment, with
// optional .env files layered underneath.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	// ErrLoadingEnvFile is returned when an explicitly requested .env file cannot be read.
	ErrLoadingEnvFile = errors.New("failed to load env file")
)

// Logging configures the process logger.
type Logging struct {
	JSON        bool       `env:"LOG_JSON"         envDefault:"false"`
	Level       slog.Level `env:"LOG_LEVEL"        envDefault:"info"`
	LegacyLevel slog.Level `env:"LEGACY_LOG_LEVEL" envDefault:"info"`
	Output      string     `env:"LOG_OUTPUT"       envDefault:"stdout"`
}

// Telemetry configures OpenTelemetry export.
type Telemetry struct {
	Enabled        bool          `env:"OTEL_ENABLED"                envDefault:"false"`
	LogsEnabled    bool          `env:"OTEL_LOGS_ENABLED"           envDefault:"false"`
	ServiceName    string        `env:"OTEL_SERVICE_NAME"           envDefault:"fsmdemo"`
	ServiceVersion string        `env:"OTEL_SERVICE_VERSION"        envDefault:"1.0.0"`
	Environment    string        `env:"ENVIRONMENT"                 envDefault:"local"`
	Endpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Timeout        time.Duration `env:"OTEL_EXPORTER_OTLP_TIMEOUT"  envDefault:"5s"`
}

// Fleet configures the parallel ticker. Zero workers means one per CPU.
type Fleet struct {
	Workers int `env:"FLEET_WORKERS" envDefault:"0"`
}

// Inspector configures the introspection HTTP server.
type Inspector struct {
	Addr         string        `env:"INSPECTOR_ADDR"          envDefault:"127.0.0.1:8080"`
	TickInterval time.Duration `env:"INSPECTOR_TICK_INTERVAL" envDefault:"100ms"`
}

// CLI configures terminal output.
type CLI struct {
	NoBanner bool `env:"NO_BANNER" envDefault:"false"`
}

// App is the full configuration of the demo binary.
type App struct {
	Logging   Logging
	Telemetry Telemetry
	Fleet     Fleet
	Inspector Inspector
	CLI       CLI
}

// Load reads the given .env files, or ./.env when none is given, and parses
// the environment into a T. Variables already set in the environment win
// over the files, and overrides win over both. A missing default .env file
// is not an error.
func Load[T any](overrides map[string]string, files ...string) (T, error) {
	var zero T

	if err := loadEnvFiles(files...); err != nil {
		return zero, err
	}

	environment := env.ToMap(os.Environ())
	maps.Copy(environment, overrides)

	return LoadFrom[T](environment)
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom[T any](environment map[string]string) (T, error) {
	return parse[T](env.Options{Environment: environment})
}

func parse[T any](opts env.Options) (T, error) {
	cfg, err := env.ParseAsWithOptions[T](opts)
	if err != nil {
		var zero T

		return zero, errors.Join(ErrParsingConfig, err)
	}

	return cfg, nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		// The default file is optional.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrLoadingEnvFile, err)
		}

		return nil
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadingEnvFile, err)
	}

	return nil
}

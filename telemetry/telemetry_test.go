package telemetry

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/amp-labs/tickfsm/config"
	"github.com/amp-labs/tickfsm/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type memoryLogExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}

	return nil
}

func (e *memoryLogExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryLogExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryLogExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	bodies := make([]string, 0, len(e.records))
	for _, r := range e.records {
		bodies = append(bodies, r.Body().AsString())
	}

	return bodies
}

//nolint:paralleltest // Test modifies the process environment
func TestEndpoint(t *testing.T) {
	tests := []struct {
		name             string
		kubernetesHost   string
		customEndpoint   string
		expectedEndpoint string
	}{
		{
			name:             "GKE environment detected",
			kubernetesHost:   "10.0.0.1",
			expectedEndpoint: gkeCollectorEndpoint,
		},
		{
			name:             "Non-GKE environment",
			expectedEndpoint: "",
		},
		{
			name:             "Custom endpoint overrides GKE default",
			kubernetesHost:   "10.0.0.1",
			customEndpoint:   "http://custom-collector:4318",
			expectedEndpoint: "http://custom-collector:4318",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.kubernetesHost != "" {
				t.Setenv("KUBERNETES_SERVICE_HOST", test.kubernetesHost)
			} else {
				t.Setenv("KUBERNETES_SERVICE_HOST", "")
				_ = os.Unsetenv("KUBERNETES_SERVICE_HOST")
			}

			cfg := config.Telemetry{Endpoint: test.customEndpoint}
			assert.Equal(t, test.expectedEndpoint, Endpoint(cfg))
		})
	}
}

//nolint:paralleltest // Test modifies global providers
func TestInitializeDisabled(t *testing.T) {
	require.NoError(t, Initialize(t.Context(), config.Telemetry{Enabled: false}))
	assert.Nil(t, LogHandler("test"))
	require.NoError(t, Shutdown(t.Context()))
}

//nolint:paralleltest // Test modifies the process environment
func TestInitializeWithoutEndpoint(t *testing.T) {
	t.Setenv("KUBERNETES_SERVICE_HOST", "")
	_ = os.Unsetenv("KUBERNETES_SERVICE_HOST")

	require.NoError(t, Initialize(t.Context(), config.Telemetry{Enabled: true}))
	assert.Nil(t, LogHandler("test"))
}

//nolint:paralleltest // Test modifies global providers
func TestInitializeCreatesProviders(t *testing.T) {
	err := Initialize(t.Context(), config.Telemetry{
		Enabled:     true,
		LogsEnabled: true,
		ServiceName: "fsmdemo",
		Endpoint:    "http://127.0.0.1:4318",
		Timeout:     100 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.NotNil(t, LogHandler("test"))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_ = Shutdown(ctx)
	})
}

//nolint:paralleltest // Test modifies global providers
func TestInstallExportsSpansAndLogs(t *testing.T) {
	res, err := newResource(t.Context(), config.Telemetry{ServiceName: "fsmdemo", Environment: "test"})
	require.NoError(t, err)

	spans := tracetest.NewInMemoryExporter()
	logs := &memoryLogExporter{}

	install(res, spans, logs)

	walk := statemachine.NewFuncState(statemachine.StateHooks{})
	idle := statemachine.NewFuncState(statemachine.StateHooks{})

	m, err := statemachine.NewBuilder("exported", nil).
		WithTracing(true).
		AddNamedState(idle, "idle").AsEnter().
		AddNamedState(walk, "walk").
		TransitFunc(func() bool { return true }).Named("go").FromState(idle).ToState(walk).
		Build()
	require.NoError(t, err)

	m.Tick()
	m.Tick()

	handler := LogHandler("fsm")
	require.NotNil(t, handler)
	slog.New(handler).Info("machine ticked", "machine", m.Name())

	// The in-memory exporter drops its spans on shutdown, so flush and
	// assert first.
	require.NoError(t, tracerProvider.ForceFlush(t.Context()))
	require.NoError(t, loggerProvider.ForceFlush(t.Context()))

	ended := spans.GetSpans()
	require.Len(t, ended, 1)
	assert.Equal(t, "statemachine.transition", ended[0].Name)
	assert.Contains(t, ended[0].Attributes, attribute.String("to", "walk"))

	assert.Equal(t, []string{"machine ticked"}, logs.bodies())

	require.NoError(t, Shutdown(t.Context()))
	assert.Empty(t, spans.GetSpans())
	assert.Nil(t, LogHandler("fsm"))
}

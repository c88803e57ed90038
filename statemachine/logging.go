package statemachine

import (
	"context"
	"log/slog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// labelsContextKey is the key used to store machine labels in a Go context.
const labelsContextKey contextKey = "statemachine_labels"

// Logger provides logging hooks for machine execution. Hooks run on the
// ticking goroutine and must return promptly.
type Logger interface {
	StateEntered(ctx context.Context, state string)
	StateExited(ctx context.Context, state string)
	TransitionFired(ctx context.Context, from, to, condition string, transitionIndex int)
	MachineReset(ctx context.Context, lastState string)
}

// ObservabilityLabels identifies the machine a hook call comes from.
type ObservabilityLabels struct {
	Machine   string
	MachineID string
	Tick      uint64
}

func withLabels(ctx context.Context, m *Machine) context.Context {
	return context.WithValue(ctx, labelsContextKey, ObservabilityLabels{
		Machine:   m.name,
		MachineID: m.id,
		Tick:      m.ticks,
	})
}

// GetObservabilityLabels extracts the machine labels from a context passed to
// a Logger hook. It returns the zero value when there are none.
func GetObservabilityLabels(ctx context.Context) ObservabilityLabels {
	labels, _ := ctx.Value(labelsContextKey).(ObservabilityLabels)

	return labels
}

// DefaultLogger implements Logger using slog. Per-tick events are logged at
// debug level; resets at info.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger writing to slog.Default().
func NewDefaultLogger() *DefaultLogger {
	return NewSlogLogger(slog.Default())
}

// NewSlogLogger creates a logger writing to the given slog logger.
func NewSlogLogger(logger *slog.Logger) *DefaultLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultLogger{logger: logger}
}

func (l *DefaultLogger) fields(ctx context.Context, fields ...any) []any {
	labels := GetObservabilityLabels(ctx)

	return append([]any{
		"machine", labels.Machine,
		"machine_id", labels.MachineID,
		"tick", labels.Tick,
	}, fields...)
}

func (l *DefaultLogger) StateEntered(ctx context.Context, state string) {
	l.logger.DebugContext(ctx, "State entered", l.fields(ctx, "state", state)...)
}

func (l *DefaultLogger) StateExited(ctx context.Context, state string) {
	l.logger.DebugContext(ctx, "State exited", l.fields(ctx, "state", state)...)
}

func (l *DefaultLogger) TransitionFired(ctx context.Context, from, to, condition string, transitionIndex int) {
	l.logger.DebugContext(ctx, "Transition fired", l.fields(ctx,
		"from", from,
		"to", to,
		"condition", condition,
		"transition_index", transitionIndex,
	)...)
}

func (l *DefaultLogger) MachineReset(ctx context.Context, lastState string) {
	l.logger.InfoContext(ctx, "Machine reset", l.fields(ctx, "last_state", lastState)...)
}

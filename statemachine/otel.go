package statemachine

import (
	"context"

	"github.com/amp-labs/tickfsm/hashing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "statemachine"

// startTransitionSpan creates a span around the exit/enter pair of a fired
// transition. The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func startTransitionSpan(ctx context.Context, m *Machine, transition Transition) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "statemachine.transition")

	span.SetAttributes(
		attribute.String("machine", m.name),
		attribute.String("machine_id", m.id),
		attribute.String("machine_hash", hashing.Label(m.name)),
		attribute.Int64("tick", int64(m.ticks)), //nolint:gosec // tick counts never reach 2^63
		attribute.String("from", m.StateDescription(transition.source)),
		attribute.String("to", m.StateDescription(transition.destination)),
		attribute.String("condition", transition.Description()),
		attribute.Int("transition_index", transition.index),
	)

	return ctx, span
}

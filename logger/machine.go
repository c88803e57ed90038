package logger

import (
	"context"

	"github.com/amp-labs/tickfsm/statemachine"
)

// MachineLogger is a statemachine.Logger that writes through Get, so hook
// records carry the subsystem, pod, context values and machine labels.
type MachineLogger struct{}

var _ statemachine.Logger = MachineLogger{}

func (MachineLogger) StateEntered(ctx context.Context, state string) {
	Get(ctx).DebugContext(ctx, "State entered", "tick", tick(ctx), "state", state)
}

func (MachineLogger) StateExited(ctx context.Context, state string) {
	Get(ctx).DebugContext(ctx, "State exited", "tick", tick(ctx), "state", state)
}

func (MachineLogger) TransitionFired(ctx context.Context, from, to, condition string, transitionIndex int) {
	Get(ctx).DebugContext(ctx, "Transition fired",
		"tick", tick(ctx),
		"from", from,
		"to", to,
		"condition", condition,
		"transition_index", transitionIndex)
}

func (MachineLogger) MachineReset(ctx context.Context, lastState string) {
	Get(ctx).InfoContext(ctx, "Machine reset", "tick", tick(ctx), "last_state", lastState)
}

func tick(ctx context.Context) uint64 {
	return statemachine.GetObservabilityLabels(ctx).Tick
}

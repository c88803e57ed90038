// Package testing provides testing utilities for tick-driven state machines.
//
//nolint:varnamelen // Short names idiomatic in test helpers
package testing

import (
	"context"
	"testing"

	"github.com/amp-labs/tickfsm/statemachine"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
)

// TraceKind tells what happened in a TraceEntry.
type TraceKind string

const (
	TraceEntered    TraceKind = "entered"
	TraceExited     TraceKind = "exited"
	TraceTransition TraceKind = "transition"
	TraceReset      TraceKind = "reset"
)

// TraceEntry records a single logging hook call of the machine under test.
type TraceEntry struct {
	Kind            TraceKind
	Tick            uint64
	State           string
	From            string
	To              string
	Condition       string
	TransitionIndex int
}

// TestMachine wraps Machine with a recorded trace and require-based assertions.
type TestMachine struct {
	*statemachine.Machine

	t     testing.TB
	trace []TraceEntry
}

// NewTestMachine builds the machine of builder, failing the test on any build
// error. Hook calls are recorded in the trace and logged through the test log.
func NewTestMachine(t testing.TB, builder *statemachine.Builder) *TestMachine {
	t.Helper()

	tm := &TestMachine{t: t}

	builder.WithLogger(&traceLogger{
		tm:   tm,
		next: statemachine.NewSlogLogger(slogt.New(t)),
	})

	machine, err := builder.Build()
	require.NoError(t, err, "failed to build machine")

	tm.Machine = machine

	return tm
}

// TickN ticks the machine n times.
func (tm *TestMachine) TickN(n int) *TestMachine {
	for range n {
		tm.Tick()
	}

	return tm
}

// Trace returns a copy of the recorded trace.
func (tm *TestMachine) Trace() []TraceEntry {
	return append([]TraceEntry(nil), tm.trace...)
}

// ClearTrace forgets every recorded entry.
func (tm *TestMachine) ClearTrace() {
	tm.trace = nil
}

// Path returns the descriptions of the entered states, in order.
func (tm *TestMachine) Path() []string {
	var path []string

	for _, entry := range tm.trace {
		if entry.Kind == TraceEntered {
			path = append(path, entry.State)
		}
	}

	return path
}

// CurrentDescription returns the description of the current state, or the
// empty string before the first tick.
func (tm *TestMachine) CurrentDescription() string {
	index, ok := tm.CurrentStateIndex().Get()
	if !ok {
		return ""
	}

	return tm.StateDescription(index)
}

// AssertUnstarted asserts the machine has no current state.
func (tm *TestMachine) AssertUnstarted() {
	tm.t.Helper()

	require.False(tm.t, tm.Started(), "machine should not be started, current is %q", tm.CurrentDescription())
	require.True(tm.t, tm.PreviousStateIndex().Empty(), "previous state should be empty")
	require.True(tm.t, tm.PreviousTransitionIndex().Empty(), "previous transition should be empty")
}

// AssertCurrent asserts the description of the current state.
func (tm *TestMachine) AssertCurrent(expected string) {
	tm.t.Helper()

	require.True(tm.t, tm.Started(), "machine should be started")
	require.Equal(tm.t, expected, tm.CurrentDescription(), "unexpected current state")
}

// AssertCurrentIndex asserts the index of the current state.
func (tm *TestMachine) AssertCurrentIndex(expected int) {
	tm.t.Helper()

	index, ok := tm.CurrentStateIndex().Get()
	require.True(tm.t, ok, "machine should be started")
	require.Equal(tm.t, expected, index, "unexpected current state index")
}

// AssertPrevious asserts the description of the previous state and the index
// of the transition that left it.
func (tm *TestMachine) AssertPrevious(expected string, transitionIndex int) {
	tm.t.Helper()

	previous, ok := tm.PreviousStateIndex().Get()
	require.True(tm.t, ok, "previous state should be set")
	require.Equal(tm.t, expected, tm.StateDescription(previous), "unexpected previous state")

	transition, ok := tm.PreviousTransitionIndex().Get()
	require.True(tm.t, ok, "previous transition should be set")
	require.Equal(tm.t, transitionIndex, transition, "unexpected previous transition")
}

// AssertStateVisited asserts the state was entered at least once.
func (tm *TestMachine) AssertStateVisited(state string) {
	tm.t.Helper()

	require.Contains(tm.t, tm.Path(), state, "state %q was not visited", state)
}

// AssertStateNotVisited asserts the state was never entered.
func (tm *TestMachine) AssertStateNotVisited(state string) {
	tm.t.Helper()

	require.NotContains(tm.t, tm.Path(), state, "state %q should not have been visited", state)
}

// AssertTransitionTaken asserts a transition fired from one state to another.
func (tm *TestMachine) AssertTransitionTaken(from, to string) {
	tm.t.Helper()

	for _, entry := range tm.trace {
		if entry.Kind == TraceTransition && entry.From == from && entry.To == to {
			return
		}
	}

	require.Failf(tm.t, "transition not taken", "no transition from %q to %q", from, to)
}

// AssertPath asserts the exact sequence of entered states.
func (tm *TestMachine) AssertPath(expected ...string) {
	tm.t.Helper()

	require.Equal(tm.t, expected, tm.Path(), "unexpected state path")
}

// traceLogger records hook calls into a TestMachine before handing them on.
type traceLogger struct {
	tm   *TestMachine
	next statemachine.Logger
}

func (l *traceLogger) record(ctx context.Context, entry TraceEntry) {
	entry.Tick = statemachine.GetObservabilityLabels(ctx).Tick
	l.tm.trace = append(l.tm.trace, entry)
}

func (l *traceLogger) StateEntered(ctx context.Context, state string) {
	l.record(ctx, TraceEntry{Kind: TraceEntered, State: state})
	l.next.StateEntered(ctx, state)
}

func (l *traceLogger) StateExited(ctx context.Context, state string) {
	l.record(ctx, TraceEntry{Kind: TraceExited, State: state})
	l.next.StateExited(ctx, state)
}

func (l *traceLogger) TransitionFired(ctx context.Context, from, to, condition string, transitionIndex int) {
	l.record(ctx, TraceEntry{
		Kind:            TraceTransition,
		From:            from,
		To:              to,
		Condition:       condition,
		TransitionIndex: transitionIndex,
	})
	l.next.TransitionFired(ctx, from, to, condition, transitionIndex)
}

func (l *traceLogger) MachineReset(ctx context.Context, lastState string) {
	l.record(ctx, TraceEntry{Kind: TraceReset, State: lastState})
	l.next.MachineReset(ctx, lastState)
}

package visualizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/amp-labs/tickfsm/statemachine"
	smtesting "github.com/amp-labs/tickfsm/statemachine/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMachine(t *testing.T) (*statemachine.Machine, *smtesting.Switch) {
	t.Helper()

	recorder := smtesting.NewRecorder()
	idle := smtesting.NewRecordingState("Idle", recorder)
	walk := smtesting.NewRecordingState("Walk", recorder)
	moving := smtesting.NewSwitch("moving")

	machine, err := statemachine.NewBuilder("walker", nil).
		WithTracing(false).
		AddState(idle).AsEnter().
		AddState(walk).
		Transit(moving).FromState(idle).ToState(walk).
		Transit(statemachine.Always()).Named("stop: now").FromState(walk).ToState(idle).
		Build()
	require.NoError(t, err)

	return machine, moving
}

func TestGenerateMermaid(t *testing.T) {
	t.Parallel()

	machine, _ := buildMachine(t)

	diagram, err := GenerateMermaid(machine)
	require.NoError(t, err)

	for _, want := range []string{
		"```mermaid\n",
		"stateDiagram-TD",
		"%% walker",
		"s0: Idle",
		"s1: Walk",
		"[*] --> s0",
		"s0 --> s1: moving",
		"s1 --> s0: stop#58; now",
		"classDef current",
	} {
		assert.Contains(t, diagram, want)
	}

	assert.NotContains(t, diagram, "class s0 current", "unstarted machine has no current state")
}

func TestGenerateMermaidRuntime(t *testing.T) {
	t.Parallel()

	machine, moving := buildMachine(t)
	machine.Tick()
	moving.On()
	machine.Tick()

	diagram, err := GenerateMermaid(machine)
	require.NoError(t, err)
	assert.Contains(t, diagram, "class s1 current")
	assert.Contains(t, diagram, "class s0 previous")

	plain, err := GenerateMermaidWithOptions(machine, DefaultOptions().WithShowRuntime(false))
	require.NoError(t, err)
	assert.NotContains(t, plain, "class s1 current")
}

func TestGenerateMermaidOptions(t *testing.T) {
	t.Parallel()

	machine, _ := buildMachine(t)

	opts := DefaultOptions().
		WithDirection("LR").
		WithShowConditions(false).
		WithShowIndices(true).
		WithHighlightPath([]string{"Walk"}).
		WithTheme("dark").
		WithFenced(false)

	diagram, err := GenerateMermaidWithOptions(machine, opts)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(diagram, "stateDiagram-LR\n"))
	assert.Contains(t, diagram, "s0: [0] Idle")
	assert.Contains(t, diagram, "s0 --> s1\n")
	assert.Contains(t, diagram, "class s1 highlighted")
	assert.Contains(t, diagram, "color:#fff")
	assert.NotContains(t, diagram, "```")
}

func TestGenerateDOT(t *testing.T) {
	t.Parallel()

	machine, _ := buildMachine(t)
	machine.Tick()

	dot, err := GenerateDOT(machine, DefaultOptions())
	require.NoError(t, err)

	for _, want := range []string{
		`digraph "walker" {`,
		"rankdir=TB;",
		`s0 [label="Idle", style="rounded,bold", color=darkgreen];`,
		`s1 [label="Walk"];`,
		"start -> s0;",
		`s0 -> s1 [label="0: moving"];`,
		`s1 -> s0 [label="1: stop: now"];`,
	} {
		assert.Contains(t, dot, want)
	}
}

type emptySource struct{ *statemachine.Machine }

func (emptySource) StateCount() int { return 0 }

type brokenSource struct{ *statemachine.Machine }

var errBroken = errors.New("broken")

func (brokenSource) Inspect(int) (statemachine.GraphInfo, error) {
	return statemachine.GraphInfo{}, errBroken
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	machine, _ := buildMachine(t)

	_, err := GenerateMermaid(nil)
	require.ErrorIs(t, err, ErrSourceNil)

	_, err = GenerateDOT(emptySource{machine}, DefaultOptions())
	require.ErrorIs(t, err, ErrNoStates)

	_, err = GenerateMermaid(brokenSource{machine})
	require.ErrorIs(t, err, errBroken)
}

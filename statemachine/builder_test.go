package statemachine_test

import (
	"errors"
	"testing"

	"github.com/amp-labs/tickfsm/statemachine"
	smtesting "github.com/amp-labs/tickfsm/statemachine/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceState is a State whose dynamic type cannot be compared.
type sliceState []int

func (sliceState) Init(any)       {}
func (sliceState) CanEnter() bool { return true }
func (sliceState) CanExit() bool  { return true }
func (sliceState) Enter()         {}
func (sliceState) Update()        {}
func (sliceState) Exit()          {}

func states(names ...string) []*smtesting.RecordingState {
	recorder := smtesting.NewRecorder()
	result := make([]*smtesting.RecordingState, len(names))

	for i, name := range names {
		result[i] = smtesting.NewRecordingState(name, recorder)
	}

	return result
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	s := states("a", "b", "c")
	a, b, c := s[0], s[1], s[2]

	tests := []struct {
		name    string
		builder func() *statemachine.Builder
		want    error
	}{
		{
			name: "missing enter state",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).AddState(a)
			},
			want: statemachine.ErrMissingEnterState,
		},
		{
			name: "duplicate state",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).AddState(a).AsEnter().AddState(a)
			},
			want: statemachine.ErrDuplicateState,
		},
		{
			name: "nil state",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).AddState(nil)
			},
			want: statemachine.ErrNilState,
		},
		{
			name: "uncomparable state",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).AddState(sliceState{1})
			},
			want: statemachine.ErrUncomparable,
		},
		{
			name: "enter without states",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).AsEnter()
			},
			want: statemachine.ErrNoStates,
		},
		{
			name: "enter set twice",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).AddState(a).AsEnter().AddState(b).AsEnter()
			},
			want: statemachine.ErrEnterStateAlreadySet,
		},
		{
			name: "duplicate identifier",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).
					AddNamedState(a, "x").AsEnter().
					AddNamedState(b, "x")
			},
			want: statemachine.ErrDuplicateIdentifier,
		},
		{
			name: "zero identifier",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).AddState(a).Identify(statemachine.Identifier{})
			},
			want: statemachine.ErrInvalidIdentifier,
		},
		{
			name: "unknown source",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).
					AddState(a).AsEnter().AddState(b).
					Transit(statemachine.Always()).FromState(c).ToState(b)
			},
			want: statemachine.ErrUnknownStateReference,
		},
		{
			name: "unknown destination name",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).
					AddState(a).AsEnter().
					Transit(statemachine.Always()).FromState(a).ToNamed("nowhere")
			},
			want: statemachine.ErrUnknownStateReference,
		},
		{
			name: "ambiguous destination",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).
					AddState(a).AsEnter().AddState(b).
					Transit(statemachine.Always()).FromState(a).To(statemachine.AnyState())
			},
			want: statemachine.ErrAmbiguousStateReference,
		},
		{
			name: "transition left open",
			builder: func() *statemachine.Builder {
				builder := statemachine.NewBuilder("m", nil).AddState(a).AsEnter()
				builder.Transit(statemachine.Always()).FromState(a)

				return builder
			},
			want: statemachine.ErrIncompleteTransition,
		},
		{
			name: "transition opened twice",
			builder: func() *statemachine.Builder {
				builder := statemachine.NewBuilder("m", nil).AddState(a).AsEnter().AddState(b)
				builder.Transit(statemachine.Always())
				builder.Transit(statemachine.Always()).FromState(a).ToState(b)

				return builder
			},
			want: statemachine.ErrIncompleteTransition,
		},
		{
			name: "source set twice",
			builder: func() *statemachine.Builder {
				builder := statemachine.NewBuilder("m", nil).AddState(a).AsEnter().AddState(b)
				source := builder.Transit(statemachine.Always())
				source.FromState(a)
				source.FromState(b)

				return builder
			},
			want: statemachine.ErrIncompleteTransition,
		},
		{
			name: "stale handle",
			builder: func() *statemachine.Builder {
				builder := statemachine.NewBuilder("m", nil).AddState(a).AsEnter().AddState(b)
				target := builder.Transit(statemachine.Always()).FromState(a)
				target.ToState(b)
				target.ToState(a)

				return builder
			},
			want: statemachine.ErrIncompleteTransition,
		},
		{
			name: "nil condition",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).AddState(a).AsEnter().
					Transit(nil).FromState(a).ToState(a)
			},
			want: statemachine.ErrNilCondition,
		},
		{
			name: "nil selector",
			builder: func() *statemachine.Builder {
				return statemachine.NewBuilder("m", nil).AddState(a).AsEnter().
					Transit(statemachine.Always()).From(nil).ToState(a)
			},
			want: statemachine.ErrNilSelector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			machine, err := tt.builder().Build()
			require.Error(t, err)
			assert.Nil(t, machine)
			require.ErrorIs(t, err, tt.want)

			var buildErr *statemachine.BuildError
			require.ErrorAs(t, err, &buildErr)
		})
	}
}

func TestBuildReportsEveryBrokenTransition(t *testing.T) {
	t.Parallel()

	s := states("a", "b", "ghost")
	a, b, ghost := s[0], s[1], s[2]

	_, err := statemachine.NewBuilder("m", nil).
		AddState(a).AsEnter().AddState(b).
		Transit(statemachine.Always()).FromState(a).ToState(ghost).
		Transit(statemachine.Always()).FromState(a).To(statemachine.AnyState()).
		Transit(statemachine.Always()).FromState(a).ToState(b).
		Build()
	require.Error(t, err)
	require.ErrorIs(t, err, statemachine.ErrUnknownStateReference)
	require.ErrorIs(t, err, statemachine.ErrAmbiguousStateReference)

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.Len(t, joined.Unwrap(), 2)

	var buildErr *statemachine.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, 0, buildErr.TransitionIndex)
	assert.Contains(t, buildErr.Error(), "transition index 0")
}

func TestBuilderStickyError(t *testing.T) {
	t.Parallel()

	s := states("a", "b")
	a, b := s[0], s[1]

	builder := statemachine.NewBuilder("m", nil).AddState(a).AddState(a)
	require.ErrorIs(t, builder.Err(), statemachine.ErrDuplicateState)

	builder.AddState(b).AsEnter().Transit(statemachine.Always()).FromState(a).ToState(b)
	require.ErrorIs(t, builder.Err(), statemachine.ErrDuplicateState)

	_, err := builder.Build()
	require.ErrorIs(t, err, statemachine.ErrDuplicateState)
}

func TestBuildStateOrder(t *testing.T) {
	t.Parallel()

	s := states("enter", "unused", "left", "right")
	enter, unused, left, right := s[0], s[1], s[2], s[3]

	machine, err := statemachine.NewBuilder("m", nil).
		AddState(left).
		AddState(unused).
		AddState(right).
		AddState(enter).AsEnter().
		Transit(statemachine.Always()).FromStates(left, right).ToState(enter).
		Transit(statemachine.Always()).FromState(enter).ToState(left).
		Build()
	require.NoError(t, err)

	require.Equal(t, 3, machine.StateCount())
	assert.Equal(t, 0, machine.EnterStateIndex())
	assert.Equal(t, "enter", machine.StateDescription(0))
	assert.Equal(t, "left", machine.StateDescription(1))
	assert.Equal(t, "right", machine.StateDescription(2))

	require.Equal(t, 3, machine.TransitionCount())
	assert.Equal(t, 0, machine.Transition(0).Declaration())
	assert.Equal(t, 0, machine.Transition(1).Declaration())
	assert.Equal(t, 1, machine.Transition(2).Declaration())
	assert.Equal(t, 2, machine.Transition(1).Source())
	assert.Equal(t, 0, machine.Transition(1).Destination())
}

func TestBuildFromOthersTo(t *testing.T) {
	t.Parallel()

	s := states("idle", "walk", "stop")
	idle, walk, stop := s[0], s[1], s[2]

	machine, err := statemachine.NewBuilder("m", nil).
		AddState(idle).AsEnter().
		AddState(walk).
		AddNamedState(stop, "Stop").
		Transit(statemachine.Always()).FromOthersToNamed("Stop").
		Build()
	require.NoError(t, err)

	require.Equal(t, 2, machine.TransitionCount())

	info, err := machine.Inspect(machine.Transition(0).Destination())
	require.NoError(t, err)
	assert.Equal(t, "Stop", info.Selected.Description)
	assert.Len(t, info.Previous, 2)
	assert.Equal(t, "idle", info.Previous[0].State.Description)
	assert.Equal(t, "walk", info.Previous[1].State.Description)
}

func TestBuildInitializesOnce(t *testing.T) {
	t.Parallel()

	recorder := smtesting.NewRecorder()
	a := smtesting.NewRecordingState("a", recorder)
	b := smtesting.NewRecordingState("b", recorder)
	sw := smtesting.NewSwitch("shared")
	host := &struct{ name string }{name: "host"}

	_, err := statemachine.NewBuilder("m", host).
		AddState(a).AsEnter().
		AddState(b).
		Transit(sw).FromState(a).ToState(b).
		Transit(sw).FromState(b).ToState(a).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 1, recorder.Count("a", smtesting.HookInit))
	assert.Equal(t, 1, recorder.Count("b", smtesting.HookInit))
	assert.Equal(t, 1, sw.Inits())
	assert.Same(t, host, a.Host())
	assert.Same(t, host, sw.Host())
}

func TestBuildTwice(t *testing.T) {
	t.Parallel()

	recorder := smtesting.NewRecorder()
	a := smtesting.NewRecordingState("a", recorder)
	sw := smtesting.NewSwitch("loop")

	builder := statemachine.NewBuilder("m", nil).
		AddState(a).AsEnter().
		Transit(sw).FromState(a).ToState(a)

	machine, err := builder.Build()
	require.NoError(t, err)
	require.NotNil(t, machine)

	again, err := builder.Build()
	require.ErrorIs(t, err, statemachine.ErrAlreadyBuilt)
	assert.Nil(t, again)

	assert.Equal(t, 1, recorder.Count("a", smtesting.HookInit))
	assert.Equal(t, 1, sw.Inits())
}

func TestNamedTransition(t *testing.T) {
	t.Parallel()

	s := states("a", "b")

	machine, err := statemachine.NewBuilder("m", nil).
		AddState(s[0]).AsEnter().
		AddState(s[1]).
		Transit(statemachine.Always()).Named("go").FromState(s[0]).ToState(s[1]).
		Transit(statemachine.Always()).FromState(s[1]).ToState(s[0]).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "go", machine.TransitionDescription(0))
	assert.Equal(t, "FuncCondition", machine.TransitionDescription(1))
	assert.True(t, machine.Transition(0).Identifier().Same(statemachine.Named("go")))
}

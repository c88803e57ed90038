package statemachine

import (
	"reflect"

	amperrors "github.com/amp-labs/tickfsm/errors"
)

type builderStage int

const (
	stageIdle builderStage = iota
	stageTransitionOpen
)

const noIndex = -1

// pendingTransition is a transition as declared, before its selectors are
// resolved against the declared states.
type pendingTransition struct {
	condition   Condition
	identifier  Identifier
	source      Selector
	destination Selector
}

func (p *pendingTransition) description() string {
	if !p.identifier.IsZero() {
		return p.identifier.Name()
	}

	return Describe(p.condition)
}

// Builder assembles states and transitions into a Machine.
//
// Calls are staged: a transition is opened with Transit, given a source with
// From and closed with To; only then may the next transition be opened. The
// first misuse is remembered, every later call becomes a no-op, and Build
// returns that error. A Builder builds at most one machine.
type Builder struct {
	name    string
	host    any
	states  []StateRef
	enter   int
	pending []*pendingTransition

	stage      builderStage
	open       *pendingTransition
	generation int

	logger  Logger
	tracing bool
	err     error
	built   bool
}

// NewBuilder creates a builder for a machine called name. The host is the
// opaque value handed to every state's and condition's Init.
func NewBuilder(name string, host any) *Builder {
	return &Builder{
		name:    name,
		host:    host,
		enter:   noIndex,
		tracing: true,
	}
}

// WithLogger sets the logger of the built machine.
func (b *Builder) WithLogger(logger Logger) *Builder {
	b.logger = logger

	return b
}

// WithTracing enables or disables transition spans on the built machine.
func (b *Builder) WithTracing(enabled bool) *Builder {
	b.tracing = enabled

	return b
}

// Err returns the first error recorded so far.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}

	return b
}

// AddState declares a state. It fails on nil, on non-comparable values and on
// an instance that was already added.
func (b *Builder) AddState(state State) *Builder {
	if b.err != nil {
		return b
	}

	if state == nil {
		return b.fail(stateError("", ErrNilState))
	}

	if !isComparable(state) {
		return b.fail(stateError(Describe(state), ErrUncomparable))
	}

	for _, ref := range b.states {
		if ref.State == state {
			return b.fail(stateError(ref.String(), ErrDuplicateState))
		}
	}

	b.states = append(b.states, StateRef{State: state})

	return b
}

// AddNamedState is AddState followed by Named.
func (b *Builder) AddNamedState(state State, name string) *Builder {
	return b.AddState(state).Named(name)
}

// AddFuncState declares a FuncState with the given hooks and name.
func (b *Builder) AddFuncState(name string, hooks StateHooks) *Builder {
	return b.AddNamedState(NewFuncState(hooks), name)
}

// AsEnter makes the most recently added state the enter state.
func (b *Builder) AsEnter() *Builder {
	if b.err != nil {
		return b
	}

	if len(b.states) == 0 {
		return b.fail(stateError("", ErrNoStates))
	}

	if b.enter != noIndex {
		return b.fail(stateError(b.states[b.enter].String(), ErrEnterStateAlreadySet))
	}

	b.enter = len(b.states) - 1

	return b
}

// Identify attaches id to the most recently added state. It fails when id is
// the same as the identifier of any declared state.
func (b *Builder) Identify(id Identifier) *Builder {
	if b.err != nil {
		return b
	}

	if len(b.states) == 0 {
		return b.fail(stateError("", ErrNoStates))
	}

	if id.IsZero() {
		return b.fail(stateError(b.states[len(b.states)-1].String(), ErrInvalidIdentifier))
	}

	for _, ref := range b.states {
		if id.Same(ref.Identifier) {
			return b.fail(stateError(id.Name(), ErrDuplicateIdentifier))
		}
	}

	b.states[len(b.states)-1].Identifier = id

	return b
}

// Named is Identify(Named(name)).
func (b *Builder) Named(name string) *Builder {
	return b.Identify(Named(name))
}

// Transit opens a new transition gated by condition. It fails if another
// transition is still open.
func (b *Builder) Transit(condition Condition) *TransitionSource {
	if b.err != nil {
		return &TransitionSource{b: b, generation: noIndex}
	}

	switch {
	case b.stage == stageTransitionOpen:
		b.fail(transitionError(len(b.pending), b.open.description(), "", ErrIncompleteTransition))
	case condition == nil:
		b.fail(transitionError(len(b.pending), "", "", ErrNilCondition))
	case !isComparable(condition):
		b.fail(transitionError(len(b.pending), Describe(condition), "", ErrUncomparable))
	default:
		b.stage = stageTransitionOpen
		b.open = &pendingTransition{condition: condition}
		b.generation++

		return &TransitionSource{b: b, generation: b.generation}
	}

	return &TransitionSource{b: b, generation: noIndex}
}

// TransitFunc is Transit(NewCondition(canTransit)).
func (b *Builder) TransitFunc(canTransit func() bool) *TransitionSource {
	return b.Transit(NewCondition(canTransit))
}

// openTransition returns the open transition if the handle generation still
// refers to it, recording ErrIncompleteTransition otherwise.
func (b *Builder) openTransition(generation int) *pendingTransition {
	if b.err != nil {
		return nil
	}

	if b.stage != stageTransitionOpen || generation != b.generation {
		b.fail(transitionError(len(b.pending), "", "", ErrIncompleteTransition))

		return nil
	}

	return b.open
}

// TransitionSource is the handle of an open transition that still needs a
// source.
type TransitionSource struct {
	b          *Builder
	generation int
}

// Identify names the transition. The name is used in diagnostics and by
// introspection in place of the condition's description.
func (t *TransitionSource) Identify(id Identifier) *TransitionSource {
	if open := t.b.openTransition(t.generation); open != nil {
		if id.IsZero() {
			t.b.fail(transitionError(len(t.b.pending), open.description(), "", ErrInvalidIdentifier))

			return t
		}

		open.identifier = id
	}

	return t
}

// Named is Identify(Named(name)).
func (t *TransitionSource) Named(name string) *TransitionSource {
	return t.Identify(Named(name))
}

// From sets the source selector. It may resolve to many states; one
// transition is created per match.
func (t *TransitionSource) From(selector Selector) *TransitionTarget {
	target := &TransitionTarget{b: t.b, generation: noIndex}

	open := t.b.openTransition(t.generation)
	if open == nil {
		return target
	}

	switch {
	case selector == nil:
		t.b.fail(transitionError(len(t.b.pending), open.description(), "", ErrNilSelector))
	case open.source != nil:
		t.b.fail(transitionError(len(t.b.pending), open.description(), selector.String(), ErrIncompleteTransition))
	default:
		open.source = selector
		target.generation = t.generation
	}

	return target
}

// FromState is From(SameState(state)).
func (t *TransitionSource) FromState(state State) *TransitionTarget {
	return t.From(SameState(state))
}

// FromStates is From(SameStates(states...)).
func (t *TransitionSource) FromStates(states ...State) *TransitionTarget {
	return t.From(SameStates(states...))
}

// FromNamed is From(ByNames(names...)).
func (t *TransitionSource) FromNamed(names ...string) *TransitionTarget {
	return t.From(ByNames(names...))
}

// FromIdentifier is From(ByIdentifier(id)).
func (t *TransitionSource) FromIdentifier(id Identifier) *TransitionTarget {
	return t.From(ByIdentifier(id))
}

// FromAny is From(AnyState()).
func (t *TransitionSource) FromAny() *TransitionTarget {
	return t.From(AnyState())
}

// FromOthersTo declares a transition from every other state to state.
func (t *TransitionSource) FromOthersTo(state State) *Builder {
	return t.From(OtherThanState(state)).ToState(state)
}

// FromOthersToNamed declares a transition from every state not named name to
// the state named name.
func (t *TransitionSource) FromOthersToNamed(name string) *Builder {
	return t.FromOthersToIdentifier(Named(name))
}

// FromOthersToIdentifier declares a transition from every state whose
// identifier is not id to the state identified by id.
func (t *TransitionSource) FromOthersToIdentifier(id Identifier) *Builder {
	return t.From(OtherThanIdentifier(id)).To(ByIdentifier(id))
}

// TransitionTarget is the handle of an open transition that has a source and
// needs a destination.
type TransitionTarget struct {
	b          *Builder
	generation int
}

// To sets the destination selector, which must resolve to exactly one state,
// and closes the transition.
func (t *TransitionTarget) To(selector Selector) *Builder {
	open := t.b.openTransition(t.generation)
	if open == nil {
		return t.b
	}

	if selector == nil {
		return t.b.fail(transitionError(len(t.b.pending), open.description(), "", ErrNilSelector))
	}

	open.destination = selector
	t.b.pending = append(t.b.pending, open)
	t.b.open = nil
	t.b.stage = stageIdle

	return t.b
}

// ToState is To(SameState(state)).
func (t *TransitionTarget) ToState(state State) *Builder {
	return t.To(SameState(state))
}

// ToNamed is To(ByName(name)).
func (t *TransitionTarget) ToNamed(name string) *Builder {
	return t.To(ByName(name))
}

// ToIdentifier is To(ByIdentifier(id)).
func (t *TransitionTarget) ToIdentifier(id Identifier) *Builder {
	return t.To(ByIdentifier(id))
}

// Build resolves every pending transition and returns the machine, with all
// its states and conditions already initialized with the host.
//
// Every broken transition is reported, joined into one error; no machine is
// returned when there is any error. Once a machine is built, later calls fail
// with ErrAlreadyBuilt and initialize nothing.
func (b *Builder) Build() (*Machine, error) {
	machine, err := b.build()
	recordBuild(err)

	if err != nil {
		return nil, err
	}

	return machine, nil
}

func (b *Builder) build() (*Machine, error) {
	if b.built {
		return nil, stateError("", ErrAlreadyBuilt)
	}

	if b.err != nil {
		return nil, b.err
	}

	if b.stage == stageTransitionOpen {
		return nil, transitionError(len(b.pending), b.open.description(), "", ErrIncompleteTransition)
	}

	if b.enter == noIndex {
		return nil, stateError("", ErrMissingEnterState)
	}

	graph := newGraph(b.states[b.enter])

	var errs amperrors.Collection

	for index, pending := range b.pending {
		destination, destErr := b.resolve(index, pending, pending.destination, true)
		sources, srcErr := b.resolve(index, pending, pending.source, false)

		errs.Add(destErr)
		errs.Add(srcErr)

		if errs.HasError() {
			continue
		}

		graph.connect(index, pending, sources, destination[0])
	}

	if errs.HasError() {
		return nil, errs.GetError()
	}

	b.built = true

	return newMachine(b.name, b.host, graph, b.logger, b.tracing), nil
}

// resolve returns the declared states matched by selector, in declaration
// order. With single set, exactly one match is required.
func (b *Builder) resolve(index int, pending *pendingTransition, selector Selector, single bool) ([]StateRef, error) {
	var matches []StateRef

	for _, ref := range b.states {
		if !selector.Valid(ref) {
			continue
		}

		if single && len(matches) > 0 {
			return nil, transitionError(index, pending.description(), selector.String(), ErrAmbiguousStateReference)
		}

		matches = append(matches, ref)
	}

	if len(matches) == 0 {
		return nil, transitionError(index, pending.description(), selector.String(), ErrUnknownStateReference)
	}

	return matches, nil
}

// isComparable reports whether v can be used with == without panicking.
func isComparable(v any) bool {
	return reflect.TypeOf(v).Comparable()
}

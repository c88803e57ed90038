package statemachine

import (
	"context"

	"github.com/amp-labs/tickfsm/optional"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Machine drives a built graph one tick at a time. Exactly one state is
// current once the machine has been ticked.
//
// A Machine is not safe for concurrent use. Tick and Reset must be called by
// a single goroutine and never from inside a state or condition hook of the
// same machine. Panics raised by hooks propagate to the caller unchanged.
type Machine struct {
	id   string
	name string
	host any

	states      []StateRef
	transitions []Transition
	outgoing    [][]int
	incoming    [][]int
	enter       int

	current            int
	previous           int
	previousTransition int
	ticks              uint64

	logger      Logger
	tracing     bool
	tickCounter prometheus.Counter
}

func newMachine(name string, host any, g *graph, logger Logger, tracing bool) *Machine {
	m := &Machine{
		id:                 uuid.NewString(),
		name:               name,
		host:               host,
		states:             g.states,
		transitions:        g.transitions,
		outgoing:           g.outgoing,
		incoming:           g.incoming,
		enter:              g.enter,
		current:            noIndex,
		previous:           noIndex,
		previousTransition: noIndex,
		logger:             logger,
		tracing:            tracing,
		tickCounter:        ticksTotal.WithLabelValues(sanitizeMachine(name)),
	}

	m.init()

	return m
}

// init binds the host to every state and to every distinct condition, once.
func (m *Machine) init() {
	for _, ref := range m.states {
		ref.State.Init(m.host)
	}

	seen := make(map[Condition]struct{}, len(m.transitions))

	for _, transition := range m.transitions {
		if _, ok := seen[transition.condition]; ok {
			continue
		}

		seen[transition.condition] = struct{}{}
		transition.condition.Init(m.host)
	}
}

// Tick runs one evaluation step. See TickContext.
func (m *Machine) Tick() {
	m.TickContext(context.Background())
}

// TickContext runs one evaluation step. The context only carries logging and
// tracing data; the step itself never blocks.
//
// The first tick after Build or Reset enters the enter state without looking
// at any transition. Later ticks, if the current state can exit, take the
// first outgoing transition, in declaration order, whose condition allows it
// and whose destination can be entered. Update is then called on whichever
// state is current.
func (m *Machine) TickContext(ctx context.Context) {
	if m.logger != nil {
		ctx = withLabels(ctx, m)
	}

	if m.current == noIndex {
		m.current = m.enter
		m.states[m.current].State.Enter()

		if m.logger != nil {
			m.logger.StateEntered(ctx, m.StateDescription(m.current))
		}
	} else {
		m.tickTransitions(ctx)
	}

	m.states[m.current].State.Update()
	m.ticks++
	m.tickCounter.Inc()
}

func (m *Machine) tickTransitions(ctx context.Context) {
	if !m.states[m.current].State.CanExit() {
		return
	}

	for _, index := range m.outgoing[m.current] {
		transition := m.transitions[index]

		if !transition.CanTransit() {
			continue
		}

		if !m.states[transition.destination].State.CanEnter() {
			continue
		}

		m.fire(ctx, transition)

		return
	}
}

func (m *Machine) fire(ctx context.Context, transition Transition) {
	if m.tracing {
		var span trace.Span

		ctx, span = startTransitionSpan(ctx, m, transition)
		defer span.End()
	}

	m.previous = m.current
	m.previousTransition = transition.index

	m.states[m.current].State.Exit()

	if m.logger != nil {
		m.logger.StateExited(ctx, m.StateDescription(m.current))
	}

	m.current = transition.destination
	m.states[m.current].State.Enter()

	if m.logger != nil {
		m.logger.StateEntered(ctx, m.StateDescription(m.current))
		m.logger.TransitionFired(ctx,
			m.StateDescription(transition.source),
			m.StateDescription(transition.destination),
			transition.Description(),
			transition.index)
	}

	recordTransition(m.name, m.StateDescription(transition.source), m.StateDescription(transition.destination))
}

// Reset exits the current state, if any, and returns the machine to its
// unstarted condition. States and conditions are not initialized again.
func (m *Machine) Reset() {
	m.ResetContext(context.Background())
}

// ResetContext is Reset with a context for logging.
func (m *Machine) ResetContext(ctx context.Context) {
	if m.logger != nil {
		ctx = withLabels(ctx, m)
	}

	last := ""

	if m.current != noIndex {
		last = m.StateDescription(m.current)
		m.states[m.current].State.Exit()

		if m.logger != nil {
			m.logger.StateExited(ctx, last)
		}
	}

	if m.logger != nil {
		m.logger.MachineReset(ctx, last)
	}

	m.current = noIndex
	m.previous = noIndex
	m.previousTransition = noIndex
	m.ticks = 0

	resetsTotal.WithLabelValues(sanitizeMachine(m.name)).Inc()
}

// Name returns the name given to NewBuilder.
func (m *Machine) Name() string {
	return m.name
}

// ID returns a unique id of this machine instance.
func (m *Machine) ID() string {
	return m.id
}

// Host returns the opaque value the machine was built with.
func (m *Machine) Host() any {
	return m.host
}

// TickCount returns the number of ticks since Build or the last Reset.
func (m *Machine) TickCount() uint64 {
	return m.ticks
}

// Started reports whether the machine has a current state.
func (m *Machine) Started() bool {
	return m.current != noIndex
}

// CurrentState returns the current state, if the machine has been ticked.
func (m *Machine) CurrentState() (State, bool) { //nolint:ireturn
	if m.current == noIndex {
		return nil, false
	}

	return m.states[m.current].State, true
}

// CurrentStateIndex returns the index of the current state, or None before the
// first tick.
func (m *Machine) CurrentStateIndex() optional.Value[int] {
	return optional.Index(m.current)
}

// PreviousStateIndex returns the index of the state left by the last fired
// transition.
func (m *Machine) PreviousStateIndex() optional.Value[int] {
	return optional.Index(m.previous)
}

// PreviousTransitionIndex returns the index of the last fired transition.
func (m *Machine) PreviousTransitionIndex() optional.Value[int] {
	return optional.Index(m.previousTransition)
}

// EnterStateIndex returns the index of the enter state. It is always 0.
func (m *Machine) EnterStateIndex() int {
	return m.enter
}

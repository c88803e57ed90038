package statemachine

import (
	"fmt"

	"github.com/amp-labs/tickfsm/optional"
)

// StateInfo identifies a state for tooling.
type StateInfo struct {
	Index       int    `json:"index"       yaml:"index"`
	Description string `json:"description" yaml:"description"`
}

// ConnectionInfo is one transition seen from one of its endpoints. State is
// the other endpoint.
type ConnectionInfo struct {
	State           StateInfo `json:"state"           yaml:"state"`
	Condition       string    `json:"condition"       yaml:"condition"`
	TransitionIndex int       `json:"transitionIndex" yaml:"transitionIndex"`
}

// GraphInfo is a read-only view of one state of a machine: its incoming and
// outgoing connections, plus where the machine currently is.
type GraphInfo struct {
	Machine                 string               `json:"machine"                 yaml:"machine"`
	Selected                StateInfo            `json:"selected"                yaml:"selected"`
	Previous                []ConnectionInfo     `json:"previous"                yaml:"previous"`
	Next                    []ConnectionInfo     `json:"next"                    yaml:"next"`
	CurrentStateIndex       optional.Value[int]  `json:"currentStateIndex"       yaml:"currentStateIndex"`
	PreviousStateIndex      optional.Value[int]  `json:"previousStateIndex"      yaml:"previousStateIndex"`
	PreviousTransitionIndex optional.Value[int]  `json:"previousTransitionIndex" yaml:"previousTransitionIndex"`
}

// Introspector is the read-only view tooling draws from. *Machine implements
// it; calls never change machine state.
type Introspector interface {
	Name() string
	StateCount() int
	EnterStateIndex() int
	StateDescription(index int) string
	Inspect(index int) (GraphInfo, error)
}

var _ Introspector = (*Machine)(nil)

// StateCount returns the number of states in the machine.
func (m *Machine) StateCount() int {
	return len(m.states)
}

// TransitionCount returns the number of transitions in the machine.
func (m *Machine) TransitionCount() int {
	return len(m.transitions)
}

// StateDescription returns the identifier name of the state at index, or its
// Describe form when it has no identifier. It panics if index is out of range.
func (m *Machine) StateDescription(index int) string {
	return m.states[index].String()
}

// StateIdentifier returns the identifier of the state at index. It panics if
// index is out of range.
func (m *Machine) StateIdentifier(index int) Identifier {
	return m.states[index].Identifier
}

// Transition returns the transition at index. It panics if index is out of
// range.
func (m *Machine) Transition(index int) Transition {
	return m.transitions[index]
}

// TransitionDescription returns the description of the transition at index.
// It panics if index is out of range.
func (m *Machine) TransitionDescription(index int) string {
	return m.transitions[index].Description()
}

// StateInfo returns the StateInfo of the state at index. It panics if index is
// out of range.
func (m *Machine) StateInfo(index int) StateInfo {
	return StateInfo{Index: index, Description: m.StateDescription(index)}
}

// Inspect returns the connections of the state at index. Previous lists
// incoming transitions and Next outgoing ones, both in transition index order.
func (m *Machine) Inspect(index int) (GraphInfo, error) {
	if index < 0 || index >= len(m.states) {
		return GraphInfo{}, fmt.Errorf("%w: %d not in [0, %d)", ErrStateIndexOutOfRange, index, len(m.states))
	}

	info := GraphInfo{
		Machine:                 m.name,
		Selected:                m.StateInfo(index),
		Previous:                make([]ConnectionInfo, 0, len(m.incoming[index])),
		Next:                    make([]ConnectionInfo, 0, len(m.outgoing[index])),
		CurrentStateIndex:       m.CurrentStateIndex(),
		PreviousStateIndex:      m.PreviousStateIndex(),
		PreviousTransitionIndex: m.PreviousTransitionIndex(),
	}

	for _, t := range m.incoming[index] {
		transition := m.transitions[t]
		info.Previous = append(info.Previous, ConnectionInfo{
			State:           m.StateInfo(transition.source),
			Condition:       transition.Description(),
			TransitionIndex: transition.index,
		})
	}

	for _, t := range m.outgoing[index] {
		transition := m.transitions[t]
		info.Next = append(info.Next, ConnectionInfo{
			State:           m.StateInfo(transition.destination),
			Condition:       transition.Description(),
			TransitionIndex: transition.index,
		})
	}

	return info, nil
}

package statemachine

import (
	"errors"
	"fmt"
	"strings"
)

// Build errors. Every one of them is a configuration bug in the code that
// assembles the machine; none is recoverable at runtime.
var (
	// ErrMissingEnterState indicates that Build was called without AsEnter.
	ErrMissingEnterState = errors.New("there is no enter state")
	// ErrDuplicateState indicates that the same state instance was added twice.
	ErrDuplicateState = errors.New("state already added")
	// ErrUnknownStateReference indicates that a selector matched no declared state.
	ErrUnknownStateReference = errors.New("selector matches no state")
	// ErrAmbiguousStateReference indicates that a destination selector matched
	// more than one declared state.
	ErrAmbiguousStateReference = errors.New("selector matches multiple states")
	// ErrDuplicateIdentifier indicates that an identifier is already used by
	// another declared state.
	ErrDuplicateIdentifier = errors.New("identifier already exists")
	// ErrIncompleteTransition indicates a wrong transition building order.
	ErrIncompleteTransition = errors.New("wrong transition building order")

	// ErrNilState indicates that a nil state was added.
	ErrNilState = errors.New("state is nil")
	// ErrNilCondition indicates that a transition was started with a nil condition.
	ErrNilCondition = errors.New("condition is nil")
	// ErrNilSelector indicates that a transition endpoint selector is nil.
	ErrNilSelector = errors.New("selector is nil")
	// ErrNoStates indicates an operation on the last added state before any state was added.
	ErrNoStates = errors.New("there are no states in the builder")
	// ErrEnterStateAlreadySet indicates that AsEnter was called twice.
	ErrEnterStateAlreadySet = errors.New("enter state already set")
	// ErrInvalidIdentifier indicates that the zero Identifier was used.
	ErrInvalidIdentifier = errors.New("identifier is not set")
	// ErrUncomparable indicates a state or condition whose dynamic type cannot
	// be compared with ==.
	ErrUncomparable = errors.New("value is not comparable")
	// ErrAlreadyBuilt indicates a second Build on the same builder.
	ErrAlreadyBuilt = errors.New("builder already built a machine")

	// ErrStateIndexOutOfRange indicates an introspection query for a state
	// index outside [0, StateCount).
	ErrStateIndexOutOfRange = errors.New("state index out of range")
)

// NoTransition is the TransitionIndex of a BuildError that does not concern a
// pending transition.
const NoTransition = -1

// BuildError wraps a build error with the context needed to find the faulty
// builder call.
type BuildError struct {
	// TransitionIndex is the declaration index of the pending transition, or
	// NoTransition.
	TransitionIndex int
	// Condition describes the transition's condition, if any.
	Condition string
	// Selector describes the selector that failed to resolve, if any.
	Selector string
	// State describes the state involved, if any.
	State string
	Err   error
}

func (e *BuildError) Error() string {
	var parts []string

	if e.Selector != "" {
		parts = append(parts, "selector "+e.Selector)
	}

	if e.Condition != "" {
		parts = append(parts, "condition "+e.Condition)
	}

	if e.TransitionIndex != NoTransition {
		parts = append(parts, fmt.Sprintf("transition index %d", e.TransitionIndex))
	}

	if e.State != "" {
		parts = append(parts, "state "+e.State)
	}

	if len(parts) == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("%v: %s", e.Err, strings.Join(parts, ", "))
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func stateError(state string, err error) error {
	return &BuildError{TransitionIndex: NoTransition, State: state, Err: err}
}

func transitionError(index int, condition, selector string, err error) error {
	return &BuildError{
		TransitionIndex: index,
		Condition:       condition,
		Selector:        selector,
		Err:             err,
	}
}

package statemachine

// Transition is an immutable edge of a built machine. The same Condition may
// back several transitions when the source selector fanned out to many
// states, but each Transition belongs to exactly one source state.
type Transition struct {
	index       int
	declaration int
	source      int
	destination int
	condition   Condition
	identifier  Identifier
}

// Index returns the position in the machine's transition list.
func (t Transition) Index() int {
	return t.index
}

// Declaration returns the index of the builder call that produced this
// transition. Transitions fanned out from one call share it.
func (t Transition) Declaration() int {
	return t.declaration
}

// Source returns the index of the source state.
func (t Transition) Source() int {
	return t.source
}

// Destination returns the index of the destination state.
func (t Transition) Destination() int {
	return t.destination
}

// Condition returns the gating condition.
func (t Transition) Condition() Condition { //nolint:ireturn
	return t.condition
}

// Identifier returns the identifier given to the transition, if any.
func (t Transition) Identifier() Identifier {
	return t.identifier
}

// Description is the transition's identifier name, or a description of its
// condition when it has none.
func (t Transition) Description() string {
	if !t.identifier.IsZero() {
		return t.identifier.Name()
	}

	return Describe(t.condition)
}

// CanTransit evaluates the condition.
func (t Transition) CanTransit() bool {
	return t.condition.CanTransit()
}

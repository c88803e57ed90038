package statemachine

import "strings"

// StateRef is a state as declared on a Builder, together with the identifier
// attached to it (zero when none).
type StateRef struct {
	State      State
	Identifier Identifier
}

func (r StateRef) String() string {
	if !r.Identifier.IsZero() {
		return r.Identifier.Name()
	}

	return Describe(r.State)
}

// Selector is a build-time predicate over declared states. It resolves the
// source and destination of a transition.
type Selector interface {
	Valid(ref StateRef) bool
	String() string
}

type sameStateSelector struct {
	state State
}

// SameState matches exactly the given state instance.
func SameState(state State) Selector { //nolint:ireturn
	return sameStateSelector{state: state}
}

func (s sameStateSelector) Valid(ref StateRef) bool {
	return ref.State == s.state
}

func (s sameStateSelector) String() string {
	return "state " + Describe(s.state)
}

type otherThanStateSelector struct {
	state State
}

// OtherThanState matches every state except the given instance.
func OtherThanState(state State) Selector { //nolint:ireturn
	return otherThanStateSelector{state: state}
}

func (s otherThanStateSelector) Valid(ref StateRef) bool {
	return ref.State != s.state
}

func (s otherThanStateSelector) String() string {
	return "other than state " + Describe(s.state)
}

type identitySelector struct {
	id Identifier
}

// ByIdentifier matches the state whose identifier is the same as id.
func ByIdentifier(id Identifier) Selector { //nolint:ireturn
	return identitySelector{id: id}
}

// ByName is ByIdentifier(Named(name)).
func ByName(name string) Selector { //nolint:ireturn
	return ByIdentifier(Named(name))
}

func (s identitySelector) Valid(ref StateRef) bool {
	return !ref.Identifier.IsZero() && s.id.Same(ref.Identifier)
}

func (s identitySelector) String() string {
	return "identity " + s.id.String()
}

type otherThanIdentitySelector struct {
	id Identifier
}

// OtherThanIdentifier matches unidentified states and states whose identifier
// is not the same as id.
func OtherThanIdentifier(id Identifier) Selector { //nolint:ireturn
	return otherThanIdentitySelector{id: id}
}

func (s otherThanIdentitySelector) Valid(ref StateRef) bool {
	return ref.Identifier.IsZero() || !s.id.Same(ref.Identifier)
}

func (s otherThanIdentitySelector) String() string {
	return "other than identity " + s.id.String()
}

type anySelector struct{}

// AnyState matches every declared state.
func AnyState() Selector { //nolint:ireturn
	return anySelector{}
}

func (anySelector) Valid(StateRef) bool {
	return true
}

func (anySelector) String() string {
	return "any state"
}

type aggregateSelector struct {
	selectors []Selector
}

// Aggregate matches a state when any of the given selectors does.
func Aggregate(selectors ...Selector) Selector { //nolint:ireturn
	return aggregateSelector{selectors: append([]Selector(nil), selectors...)}
}

// SameStates is an Aggregate of SameState selectors.
func SameStates(states ...State) Selector { //nolint:ireturn
	selectors := make([]Selector, len(states))
	for i, state := range states {
		selectors[i] = SameState(state)
	}

	return Aggregate(selectors...)
}

// ByNames is an Aggregate of ByName selectors.
func ByNames(names ...string) Selector { //nolint:ireturn
	selectors := make([]Selector, len(names))
	for i, name := range names {
		selectors[i] = ByName(name)
	}

	return Aggregate(selectors...)
}

func (s aggregateSelector) Valid(ref StateRef) bool {
	for _, selector := range s.selectors {
		if selector.Valid(ref) {
			return true
		}
	}

	return false
}

func (s aggregateSelector) String() string {
	parts := make([]string, len(s.selectors))
	for i, selector := range s.selectors {
		parts[i] = selector.String()
	}

	return "any of (" + strings.Join(parts, ", ") + ")"
}

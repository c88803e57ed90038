package statemachine

// Condition gates a single transition. Init is called exactly once with the
// machine's host, CanTransit every tick the owning transition is considered.
//
// Implementations must be comparable; pointer types are recommended.
type Condition interface {
	Init(host any)
	CanTransit() bool
}

// BaseCondition is an embeddable Condition that stores the host and never
// allows the transition.
type BaseCondition struct {
	host any
}

func (c *BaseCondition) Init(host any) {
	c.host = host
}

// Host returns the value passed to Init.
func (c *BaseCondition) Host() any {
	return c.host
}

func (c *BaseCondition) CanTransit() bool {
	return false
}

// FuncCondition is a Condition backed by a predicate.
type FuncCondition struct {
	BaseCondition

	canTransit func() bool
}

// NewCondition creates a condition from a predicate. A nil predicate never
// allows the transition.
func NewCondition(canTransit func() bool) *FuncCondition {
	return &FuncCondition{canTransit: canTransit}
}

// Always returns a condition that always allows the transition.
func Always() *FuncCondition {
	return NewCondition(func() bool { return true })
}

func (c *FuncCondition) CanTransit() bool {
	return c.canTransit != nil && c.canTransit()
}

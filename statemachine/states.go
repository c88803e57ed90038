package statemachine

import (
	"fmt"
	"strings"
)

// State is a node of the machine. The machine calls Init exactly once with
// the host value it was built with, then drives the lifecycle hooks from Tick:
// Enter when the state becomes current, Update once per tick while current,
// and Exit when it stops being current.
//
// CanExit gates whether any outgoing transition is attempted this tick.
// CanEnter gates whether this state accepts an incoming transition.
//
// Implementations must be comparable; pointer types are recommended.
type State interface {
	Init(host any)
	CanEnter() bool
	CanExit() bool
	Enter()
	Update()
	Exit()
}

// BaseState is an embeddable State with permissive guards and no-op hooks.
type BaseState struct {
	host any
}

func (s *BaseState) Init(host any) {
	s.host = host
}

// Host returns the value passed to Init.
func (s *BaseState) Host() any {
	return s.host
}

func (s *BaseState) CanEnter() bool { return true }

func (s *BaseState) CanExit() bool { return true }

func (s *BaseState) Enter() {}

func (s *BaseState) Update() {}

func (s *BaseState) Exit() {}

// StateHooks are the optional callbacks of a FuncState.
type StateHooks struct {
	OnInit   func(host any)
	OnEnter  func()
	OnUpdate func()
	OnExit   func()
	CanEnter func() bool
	CanExit  func() bool
}

// FuncState is a State backed by plain functions. Nil hooks are skipped and nil
// guards allow the move.
type FuncState struct {
	BaseState

	hooks StateHooks
}

// NewFuncState creates a state from the given hooks.
func NewFuncState(hooks StateHooks) *FuncState {
	return &FuncState{hooks: hooks}
}

func (s *FuncState) Init(host any) {
	s.BaseState.Init(host)

	if s.hooks.OnInit != nil {
		s.hooks.OnInit(host)
	}
}

func (s *FuncState) CanEnter() bool {
	return s.hooks.CanEnter == nil || s.hooks.CanEnter()
}

func (s *FuncState) CanExit() bool {
	return s.hooks.CanExit == nil || s.hooks.CanExit()
}

func (s *FuncState) Enter() {
	if s.hooks.OnEnter != nil {
		s.hooks.OnEnter()
	}
}

func (s *FuncState) Update() {
	if s.hooks.OnUpdate != nil {
		s.hooks.OnUpdate()
	}
}

func (s *FuncState) Exit() {
	if s.hooks.OnExit != nil {
		s.hooks.OnExit()
	}
}

// CombinedState runs an ordered list of child states as one state. Every
// lifecycle call, including Init, is forwarded to each child in order. It has
// no guard logic of its own.
type CombinedState struct {
	BaseState

	children []State
}

// Combine creates a CombinedState over the given children.
func Combine(states ...State) *CombinedState {
	combined := &CombinedState{}
	for _, state := range states {
		combined.Compose(state)
	}

	return combined
}

// Compose appends a child. It must be called before the state is handed to a
// Builder. Nil children are ignored.
func (c *CombinedState) Compose(state State) *CombinedState {
	if state != nil {
		c.children = append(c.children, state)
	}

	return c
}

// Children returns the composed states in order.
func (c *CombinedState) Children() []State {
	return append([]State(nil), c.children...)
}

func (c *CombinedState) Init(host any) {
	c.BaseState.Init(host)

	for _, child := range c.children {
		child.Init(host)
	}
}

func (c *CombinedState) Enter() {
	for _, child := range c.children {
		child.Enter()
	}
}

func (c *CombinedState) Update() {
	for _, child := range c.children {
		child.Update()
	}
}

func (c *CombinedState) Exit() {
	for _, child := range c.children {
		child.Exit()
	}
}

func (c *CombinedState) String() string {
	parts := make([]string, len(c.children))
	for i, child := range c.children {
		parts[i] = Describe(child)
	}

	return "[" + strings.Join(parts, " + ") + "]"
}

// Describe returns a display form for a state or condition: its String method
// when it has one, otherwise its bare type name.
func Describe(v any) string {
	if v == nil {
		return "<nil>"
	}

	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}

	name := fmt.Sprintf("%T", v)
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}

	return strings.TrimLeft(name, "*")
}

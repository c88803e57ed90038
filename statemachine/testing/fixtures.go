package testing

import (
	"sync"

	"github.com/amp-labs/tickfsm/statemachine"
)

// Hook names the lifecycle call a Recorder saw.
type Hook string

const (
	HookInit   Hook = "init"
	HookEnter  Hook = "enter"
	HookUpdate Hook = "update"
	HookExit   Hook = "exit"
)

// Event is one recorded lifecycle call.
type Event struct {
	State string
	Hook  Hook
}

// Recorder collects lifecycle calls from RecordingStates, in call order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one event.
func (r *Recorder) Record(state string, hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, Event{State: state, Hook: hook})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Event(nil), r.events...)
}

// Hooks returns the recorded events formatted as "state.hook", skipping init
// calls.
func (r *Recorder) Hooks() []string {
	var hooks []string

	for _, event := range r.Events() {
		if event.Hook == HookInit {
			continue
		}

		hooks = append(hooks, event.State+"."+string(event.Hook))
	}

	return hooks
}

// Count returns how many times state saw hook.
func (r *Recorder) Count(state string, hook Hook) int {
	count := 0

	for _, event := range r.Events() {
		if event.State == state && event.Hook == hook {
			count++
		}
	}

	return count
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}

// RecordingState is a state that records its lifecycle calls. BlockEnter and
// BlockExit veto entering and leaving it.
type RecordingState struct {
	statemachine.BaseState

	name     string
	recorder *Recorder

	BlockEnter bool
	BlockExit  bool
}

// NewRecordingState creates a state called name recording into recorder.
func NewRecordingState(name string, recorder *Recorder) *RecordingState {
	return &RecordingState{name: name, recorder: recorder}
}

func (s *RecordingState) Init(host any) {
	s.BaseState.Init(host)
	s.recorder.Record(s.name, HookInit)
}

func (s *RecordingState) CanEnter() bool {
	return !s.BlockEnter
}

func (s *RecordingState) CanExit() bool {
	return !s.BlockExit
}

func (s *RecordingState) Enter() {
	s.recorder.Record(s.name, HookEnter)
}

func (s *RecordingState) Update() {
	s.recorder.Record(s.name, HookUpdate)
}

func (s *RecordingState) Exit() {
	s.recorder.Record(s.name, HookExit)
}

func (s *RecordingState) String() string {
	return s.name
}

// Switch is a condition that allows its transitions while it is on.
type Switch struct {
	statemachine.BaseCondition

	name        string
	on          bool
	inits       int
	evaluations int
}

// NewSwitch creates a switch that starts off.
func NewSwitch(name string) *Switch {
	return &Switch{name: name}
}

func (s *Switch) Init(host any) {
	s.BaseCondition.Init(host)
	s.inits++
}

func (s *Switch) CanTransit() bool {
	s.evaluations++

	return s.on
}

// Set turns the switch on or off.
func (s *Switch) Set(on bool) {
	s.on = on
}

// On turns the switch on.
func (s *Switch) On() {
	s.on = true
}

// Off turns the switch off.
func (s *Switch) Off() {
	s.on = false
}

// Inits returns how many times Init was called.
func (s *Switch) Inits() int {
	return s.inits
}

// Evaluations returns how many times CanTransit was called.
func (s *Switch) Evaluations() int {
	return s.evaluations
}

func (s *Switch) String() string {
	return s.name
}

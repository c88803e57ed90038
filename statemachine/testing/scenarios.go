package testing

import (
	"testing"

	"github.com/amp-labs/tickfsm/statemachine"
)

// Step sets switches, ticks and checks the current state.
type Step struct {
	Set    map[string]bool
	Ticks  int
	Expect string
}

// Scenario is a sequence of steps run against a freshly built machine.
// Setup returns the builder and the switches the steps refer to by name.
type Scenario struct {
	Name  string
	Setup func() (*statemachine.Builder, map[string]*Switch)
	Steps []Step
}

// RunScenario runs scenario as a subtest.
func RunScenario(t *testing.T, scenario Scenario) {
	t.Helper()

	t.Run(scenario.Name, func(t *testing.T) {
		t.Parallel()

		builder, switches := scenario.Setup()
		tm := NewTestMachine(t, builder)

		for i, step := range scenario.Steps {
			for name, on := range step.Set {
				sw, ok := switches[name]
				if !ok {
					t.Fatalf("step %d: unknown switch %q", i, name)
				}

				sw.Set(on)
			}

			ticks := step.Ticks
			if ticks == 0 {
				ticks = 1
			}

			tm.TickN(ticks)

			if step.Expect != "" && tm.CurrentDescription() != step.Expect {
				t.Fatalf("step %d: current state is %q, expected %q", i, tm.CurrentDescription(), step.Expect)
			}
		}
	})
}

package statemachine_test

import (
	"testing"

	"github.com/amp-labs/tickfsm/statemachine"
	"github.com/stretchr/testify/assert"
)

func TestSelectors(t *testing.T) {
	t.Parallel()

	s := states("a", "b", "c")
	a := statemachine.StateRef{State: s[0]}
	b := statemachine.StateRef{State: s[1], Identifier: statemachine.Named("B")}
	c := statemachine.StateRef{State: s[2], Identifier: statemachine.Named("C")}
	refs := []statemachine.StateRef{a, b, c}

	tests := []struct {
		name     string
		selector statemachine.Selector
		want     []bool
	}{
		{"same state", statemachine.SameState(s[0]), []bool{true, false, false}},
		{"other than state", statemachine.OtherThanState(s[0]), []bool{false, true, true}},
		{"by name", statemachine.ByName("B"), []bool{false, true, false}},
		{"by missing name", statemachine.ByName("Z"), []bool{false, false, false}},
		{"by zero identifier", statemachine.ByIdentifier(statemachine.Identifier{}), []bool{false, false, false}},
		{"other than identifier", statemachine.OtherThanIdentifier(statemachine.Named("B")), []bool{true, false, true}},
		{"any", statemachine.AnyState(), []bool{true, true, true}},
		{"aggregate", statemachine.Aggregate(statemachine.SameState(s[0]), statemachine.ByName("C")), []bool{true, false, true}},
		{"empty aggregate", statemachine.Aggregate(), []bool{false, false, false}},
		{"same states", statemachine.SameStates(s[1], s[2]), []bool{false, true, true}},
		{"by names", statemachine.ByNames("C", "B"), []bool{false, true, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for i, ref := range refs {
				assert.Equal(t, tt.want[i], tt.selector.Valid(ref), "state %s", ref)
			}

			assert.NotEmpty(t, tt.selector.String())
		})
	}
}

func TestStateRefString(t *testing.T) {
	t.Parallel()

	s := states("plain")

	assert.Equal(t, "plain", statemachine.StateRef{State: s[0]}.String())
	assert.Equal(t, "Named", statemachine.StateRef{State: s[0], Identifier: statemachine.Named("Named")}.String())
}

func TestSelectorStrings(t *testing.T) {
	t.Parallel()

	s := states("a", "b")

	assert.Equal(t, "state a", statemachine.SameState(s[0]).String())
	assert.Equal(t, "identity B", statemachine.ByName("B").String())
	assert.Equal(t, "any of (state a, state b)", statemachine.SameStates(s[0], s[1]).String())
}

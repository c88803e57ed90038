package statemachine

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type metricState struct {
	BaseState

	name string
}

func (s *metricState) String() string {
	return s.name
}

// Note: Cannot use t.Parallel() because this test reads global Prometheus metrics.
//
//nolint:paralleltest // Test reads global Prometheus metric state
func TestMachineMetrics(t *testing.T) {
	a := &metricState{name: "a"}
	b := &metricState{name: "b"}

	machine, err := NewBuilder("metrics-test", nil).
		WithTracing(false).
		AddState(a).AsEnter().
		AddState(b).
		Transit(Always()).FromState(a).ToState(b).
		Build()
	require.NoError(t, err)

	ticks := testutil.ToFloat64(ticksTotal.WithLabelValues("metrics-test"))
	transitions := testutil.ToFloat64(transitionsTotal.WithLabelValues("metrics-test", "a", "b"))
	resets := testutil.ToFloat64(resetsTotal.WithLabelValues("metrics-test"))

	machine.Tick()
	machine.Tick()
	machine.Tick()
	machine.Reset()

	assert.InDelta(t, ticks+3, testutil.ToFloat64(ticksTotal.WithLabelValues("metrics-test")), 0)
	assert.InDelta(t, transitions+1, testutil.ToFloat64(transitionsTotal.WithLabelValues("metrics-test", "a", "b")), 0)
	assert.InDelta(t, resets+1, testutil.ToFloat64(resetsTotal.WithLabelValues("metrics-test")), 0)
}

//nolint:paralleltest // Test reads global Prometheus metric state
func TestBuildMetrics(t *testing.T) {
	success := testutil.ToFloat64(buildsTotal.WithLabelValues(outcomeSuccess))
	failure := testutil.ToFloat64(buildsTotal.WithLabelValues(outcomeError))

	_, err := NewBuilder("", nil).Build()
	require.ErrorIs(t, err, ErrMissingEnterState)

	_, err = NewBuilder("", nil).AddState(&metricState{name: "only"}).AsEnter().Build()
	require.NoError(t, err)

	assert.InDelta(t, success+1, testutil.ToFloat64(buildsTotal.WithLabelValues(outcomeSuccess)), 0)
	assert.InDelta(t, failure+1, testutil.ToFloat64(buildsTotal.WithLabelValues(outcomeError)), 0)
}

func TestSanitizeMachine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unnamed", sanitizeMachine(""))
	assert.Equal(t, "m", sanitizeMachine("m"))
}

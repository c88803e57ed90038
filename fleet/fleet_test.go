package fleet_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/amp-labs/tickfsm/config"
	"github.com/amp-labs/tickfsm/examples/locomotion"
	"github.com/amp-labs/tickfsm/fleet"
	"github.com/amp-labs/tickfsm/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newControllers(t *testing.T, n int) []*locomotion.Controller {
	t.Helper()

	controllers := make([]*locomotion.Controller, n)

	for i := range controllers {
		c, err := locomotion.New(fmt.Sprintf("walker-%d", i), locomotion.WithTracing(false))
		require.NoError(t, err)

		controllers[i] = c
	}

	return controllers
}

func newFleet(t *testing.T, workers int, controllers []*locomotion.Controller) *fleet.Fleet {
	t.Helper()

	f := fleet.New(config.Fleet{Workers: workers})
	t.Cleanup(f.Stop)

	for _, c := range controllers {
		require.NoError(t, f.Add(c.Machine))
	}

	return f
}

func TestTickAll(t *testing.T) {
	t.Parallel()

	controllers := newControllers(t, 16)
	f := newFleet(t, 4, controllers)

	require.Equal(t, 16, f.Len())
	require.NoError(t, f.TickAll(t.Context()))
	assert.Equal(t, uint64(1), f.Frames())

	for i, c := range controllers {
		if i%2 == 0 {
			c.Moving.Set(true)
		}
	}

	require.NoError(t, f.TickFrames(t.Context(), 3))
	assert.Equal(t, uint64(4), f.Frames())

	for i, c := range controllers {
		gait, ok := c.Gait()
		require.True(t, ok)

		assert.Equal(t, uint64(4), c.Machine.TickCount())

		if i%2 == 0 {
			assert.Equal(t, locomotion.Walk, gait, c.Machine.Name())
			assert.InDelta(t, 3, c.Distance(), 1e-9)
		} else {
			assert.Equal(t, locomotion.Idle, gait, c.Machine.Name())
			assert.Zero(t, c.Distance())
		}
	}
}

func TestResetAll(t *testing.T) {
	t.Parallel()

	controllers := newControllers(t, 3)
	f := newFleet(t, 2, controllers)

	require.NoError(t, f.TickFrames(t.Context(), 2))
	require.NoError(t, f.ResetAll(t.Context()))

	for _, c := range controllers {
		assert.False(t, c.Machine.Started())
	}

	assert.Equal(t, uint64(2), f.Frames(), "resets are not frames")
}

func TestAddRejectsDuplicates(t *testing.T) {
	t.Parallel()

	controllers := newControllers(t, 2)
	f := newFleet(t, 2, controllers[:1])
	first, second := controllers[0].Machine, controllers[1].Machine

	err := f.Add(first)
	require.ErrorIs(t, err, fleet.ErrDuplicateMachine)
	assert.Contains(t, err.Error(), "walker-0")

	require.ErrorIs(t, f.Add(second, second), fleet.ErrDuplicateMachine)
	require.ErrorIs(t, f.Add(second, nil), fleet.ErrNilMachine)
	assert.Equal(t, 1, f.Len(), "a rejected call adds nothing")

	require.NoError(t, f.Add(second))
	require.NoError(t, f.TickFrames(t.Context(), 200))
	assert.Equal(t, uint64(200), first.TickCount())
	assert.Equal(t, uint64(200), second.TickCount())
}

func TestTickAllCanceled(t *testing.T) {
	t.Parallel()

	controllers := newControllers(t, 2)
	f := newFleet(t, 1, controllers)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := f.TickAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), f.Frames())

	for _, c := range controllers {
		assert.False(t, c.Machine.Started())
	}
}

func TestTickAllPanickingMachine(t *testing.T) {
	t.Parallel()

	healthy := newControllers(t, 1)[0]

	broken, err := statemachine.NewBuilder("broken", nil).
		WithTracing(false).
		AddFuncState("boom", statemachine.StateHooks{
			OnUpdate: func() { panic("boom") },
		}).AsEnter().
		Build()
	require.NoError(t, err)

	f := newFleet(t, 2, []*locomotion.Controller{healthy})
	require.NoError(t, f.Add(broken))

	err = f.TickAll(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "machine broken")

	assert.True(t, healthy.Machine.Started(), "other machines still tick")
	assert.Equal(t, uint64(0), f.Frames())
}

func TestStop(t *testing.T) {
	t.Parallel()

	f := fleet.New(config.Fleet{})
	require.NoError(t, f.TickAll(t.Context()))

	f.Stop()
	f.Stop()

	require.ErrorIs(t, f.TickAll(t.Context()), fleet.ErrStopped)
	require.ErrorIs(t, f.ResetAll(t.Context()), fleet.ErrStopped)
	require.ErrorIs(t, f.Add(nil), fleet.ErrStopped)
	assert.Empty(t, f.Machines())
}

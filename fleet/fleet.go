// Package fleet ticks many independent state machines in parallel on a
// bounded worker pool. Each frame ticks every machine exactly once; a single
// machine is never ticked by two workers at the same time.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/tickfsm/config"
	amperrors "github.com/amp-labs/tickfsm/errors"
	"github.com/amp-labs/tickfsm/statemachine"
	"go.uber.org/atomic"
)

var (
	// ErrStopped is returned by operations on a stopped fleet.
	ErrStopped = errors.New("fleet is stopped")

	// ErrDuplicateMachine is returned by Add when a machine is already
	// registered or passed twice.
	ErrDuplicateMachine = errors.New("machine already in fleet")

	// ErrNilMachine is returned by Add for a nil machine.
	ErrNilMachine = errors.New("nil machine")
)

// Fleet owns a worker pool and the machines it ticks.
type Fleet struct {
	// frame serializes frames so that no machine is ticked concurrently.
	frame sync.Mutex

	mut      sync.RWMutex
	machines []*statemachine.Machine
	stopped  bool

	pool   pond.Pool
	frames *atomic.Uint64
}

// New creates a fleet with cfg.Workers workers, or one per CPU when zero.
func New(cfg config.Fleet) *Fleet {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	slog.Debug("Initializing fleet worker pool", "workers", workers)

	return &Fleet{
		pool:   pond.NewPool(workers),
		frames: atomic.NewUint64(0),
	}
}

// Add registers machines. They are ticked from the next frame on. Nothing is
// added when any machine is already registered or repeated in the call.
func (f *Fleet) Add(machines ...*statemachine.Machine) error {
	f.mut.Lock()
	defer f.mut.Unlock()

	if f.stopped {
		return ErrStopped
	}

	seen := make(map[*statemachine.Machine]struct{}, len(f.machines)+len(machines))
	for _, m := range f.machines {
		seen[m] = struct{}{}
	}

	for _, m := range machines {
		if m == nil {
			return ErrNilMachine
		}

		if _, ok := seen[m]; ok {
			return fmt.Errorf("%w: %s (%s)", ErrDuplicateMachine, m.Name(), m.ID())
		}

		seen[m] = struct{}{}
	}

	f.machines = append(f.machines, machines...)

	return nil
}

// Len returns the number of registered machines.
func (f *Fleet) Len() int {
	f.mut.RLock()
	defer f.mut.RUnlock()

	return len(f.machines)
}

// Machines returns a copy of the registered machines.
func (f *Fleet) Machines() []*statemachine.Machine {
	f.mut.RLock()
	defer f.mut.RUnlock()

	return append([]*statemachine.Machine(nil), f.machines...)
}

// Frames returns the number of completed TickAll frames.
func (f *Fleet) Frames() uint64 {
	return f.frames.Load()
}

// TickAll ticks every machine once and waits for all of them. Machines not
// yet started when ctx is done are skipped and ctx.Err() is reported. A
// panicking hook fails only its own machine's tick; the errors are joined.
func (f *Fleet) TickAll(ctx context.Context) error {
	err := f.each(ctx, func(ctx context.Context, m *statemachine.Machine) {
		m.TickContext(ctx)
	})
	if err != nil {
		return err
	}

	f.frames.Inc()

	return nil
}

// TickFrames runs n frames back to back, stopping at the first error.
func (f *Fleet) TickFrames(ctx context.Context, n int) error {
	for i := range n {
		if err := f.TickAll(ctx); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	return nil
}

// ResetAll resets every machine.
func (f *Fleet) ResetAll(ctx context.Context) error {
	return f.each(ctx, func(ctx context.Context, m *statemachine.Machine) {
		m.ResetContext(ctx)
	})
}

func (f *Fleet) each(ctx context.Context, fn func(context.Context, *statemachine.Machine)) error {
	f.frame.Lock()
	defer f.frame.Unlock()

	f.mut.RLock()
	machines := append([]*statemachine.Machine(nil), f.machines...)
	stopped := f.stopped
	f.mut.RUnlock()

	if stopped {
		return ErrStopped
	}

	tasks := make([]pond.Task, 0, len(machines))

	for _, m := range machines {
		tasks = append(tasks, f.pool.SubmitErr(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			fn(ctx, m)

			return nil
		}))
	}

	var errs amperrors.Collection

	for i, task := range tasks {
		if err := task.Wait(); err != nil {
			errs.Add(fmt.Errorf("machine %s (%s): %w", machines[i].Name(), machines[i].ID(), err))
		}
	}

	return errs.GetError()
}

// Stop waits for running tasks and shuts the pool down. Later calls to Add,
// TickAll and ResetAll fail with ErrStopped.
func (f *Fleet) Stop() {
	f.mut.Lock()

	if f.stopped {
		f.mut.Unlock()

		return
	}

	f.stopped = true
	f.mut.Unlock()

	slog.Debug("Stopping fleet worker pool")
	f.pool.StopAndWait()
	slog.Debug("Fleet worker pool stopped")
}

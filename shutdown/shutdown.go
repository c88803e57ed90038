// Package shutdown turns SIGINT and SIGTERM into context cancellation, running
// registered hooks first while the context is still alive.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mut     sync.Mutex     //nolint:gochecknoglobals
	hooks   []func()       //nolint:gochecknoglobals
	trigger chan os.Signal //nolint:gochecknoglobals
)

// BeforeShutdown registers a function to be called before the context
// returned by SetupHandler is canceled. Hooks run in registration order.
func BeforeShutdown(h func()) {
	mut.Lock()
	defer mut.Unlock()

	hooks = append(hooks, h)
}

// Shutdown triggers the shutdown process as if a signal had arrived. It does
// nothing before SetupHandler or after shutdown has started.
func Shutdown() {
	mut.Lock()
	ch := trigger
	mut.Unlock()

	if ch == nil {
		return
	}

	select {
	case ch <- os.Interrupt:
	default:
	}
}

// SetupHandler returns a child of parent that is canceled, after the hooks
// have run, on the first SIGINT or SIGTERM. The returned stop function
// releases the signal handler without running hooks.
func SetupHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	mut.Lock()
	trigger = ch
	mut.Unlock()

	ctx, cancel := context.WithCancel(parent)

	go func() {
		select {
		case sig := <-ch:
			slog.Warn("Received " + sig.String() + ", shutting down...")

			release(ch)
			cleanup()
			cancel()
		case <-ctx.Done():
			release(ch)
		}
	}()

	return ctx, cancel
}

func release(ch chan os.Signal) {
	signal.Stop(ch)

	mut.Lock()
	defer mut.Unlock()

	if trigger == ch {
		trigger = nil
	}
}

func cleanup() {
	mut.Lock()
	pending := hooks
	hooks = nil
	mut.Unlock()

	for _, h := range pending {
		h()
	}
}

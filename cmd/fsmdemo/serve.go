package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/amp-labs/tickfsm/examples/locomotion"
	"github.com/amp-labs/tickfsm/inspector"
	"github.com/amp-labs/tickfsm/logger"
	"github.com/amp-labs/tickfsm/shutdown"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr       string
		interval   time.Duration
		scriptPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Tick the machine on an interval and serve the inspector",
		Long: `Replays a script in a loop, one tick per interval, publishing a snapshot
after every tick. The inspector serves /machine, /states, /diagram, /validate
and /metrics. The machine is reset each time the script starts over.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Inspector.Addr
			}

			if interval <= 0 {
				interval = a.cfg.Inspector.TickInterval
			}

			script, err := loadScript(scriptPath)
			if err != nil {
				return err
			}

			c, err := a.newController()
			if err != nil {
				return err
			}

			insp := inspector.New()
			insp.CaptureAndPublish(c.Machine)

			shutdown.BeforeShutdown(func() {
				logger.Get(cmd.Context()).Info("Stopping inspector",
					"published", insp.Published(), "ticks", c.Machine.TickCount())
			})

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			served := make(chan error, 1)

			go func() {
				served <- inspector.Serve(ctx, addr, insp.Handler())
				cancel()
			}()

			loop(ctx, c, insp, script.frames(), interval)

			return <-served
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default INSPECTOR_ADDR)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Tick interval (default INSPECTOR_TICK_INTERVAL)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "Path to a YAML script (default: built-in script)")

	return cmd
}

// loop ticks c once per interval until ctx is done, cycling through frames.
func loop(ctx context.Context, c *locomotion.Controller, insp *inspector.Inspector,
	frames []map[string]bool, interval time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx = logger.With(ctx, "mode", "serve")

	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if frame > 0 && frame%len(frames) == 0 {
			logger.Get(ctx).Debug("Script finished, starting over", "ticks", c.Machine.TickCount())
			c.Reset()
		}

		if err := applySwitches(c, frames[frame%len(frames)]); err != nil {
			slog.Warn("Skipping frame", "frame", frame, "error", err)
		}

		c.Machine.TickContext(ctx)
		insp.CaptureAndPublish(c.Machine)
	}
}

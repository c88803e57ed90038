package main

import (
	"fmt"
	"time"

	"github.com/amp-labs/tickfsm/config"
	"github.com/amp-labs/tickfsm/examples/locomotion"
	"github.com/amp-labs/tickfsm/fleet"
	"github.com/amp-labs/tickfsm/shutdown"
	"github.com/spf13/cobra"
)

func newFleetCmd(a *app) *cobra.Command {
	var (
		machines int
		frames   int
		rounds   int
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "fleet",
		Short: "Tick many locomotion machines in parallel",
		Long: `Builds --machines controllers and ticks them for --frames frames on a
worker pool. Every second controller moves and every third sprints. With
--rounds above one, every machine is reset between rounds; distance adds up
across rounds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Fleet
			if workers > 0 {
				cfg = config.Fleet{Workers: workers}
			}

			f := fleet.New(cfg)
			defer f.Stop()

			shutdown.BeforeShutdown(f.Stop)

			controllers := make([]*locomotion.Controller, machines)

			for i := range controllers {
				c, err := locomotion.New(fmt.Sprintf("%s-%d", a.name, i))
				if err != nil {
					return err
				}

				c.Moving.Set(i%2 == 0)
				c.Sprinting.Set(i%3 == 0)

				if err := f.Add(c.Machine); err != nil {
					return err
				}

				controllers[i] = c
			}

			start := time.Now()

			for round := range rounds {
				if round > 0 {
					if err := f.ResetAll(cmd.Context()); err != nil {
						return fmt.Errorf("reset before round %d: %w", round, err)
					}
				}

				if err := f.TickFrames(cmd.Context(), frames); err != nil {
					return fmt.Errorf("round %d: %w", round, err)
				}
			}

			elapsed := time.Since(start)

			counts := make(map[locomotion.Gait]int)
			distance := 0.0

			for _, c := range controllers {
				if gait, ok := c.Gait(); ok {
					counts[gait]++
				}

				distance += c.Distance()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "machines: %d\n", f.Len())
			fmt.Fprintf(out, "rounds: %d\n", rounds)
			fmt.Fprintf(out, "frames: %d\n", f.Frames())

			for _, gait := range []locomotion.Gait{locomotion.Idle, locomotion.Walk, locomotion.Run} {
				fmt.Fprintf(out, "%s: %d\n", gait, counts[gait])
			}

			fmt.Fprintf(out, "distance: %.1f\n", distance)
			fmt.Fprintf(cmd.ErrOrStderr(), "elapsed: %s\n", elapsed)

			return nil
		},
	}

	cmd.Flags().IntVar(&machines, "machines", 8, "Number of machines")
	cmd.Flags().IntVar(&frames, "frames", 100, "Number of frames to tick per round")
	cmd.Flags().IntVar(&rounds, "rounds", 1, "Number of rounds, resetting every machine in between")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker count (default FLEET_WORKERS, 0 means one per CPU)")

	return cmd
}

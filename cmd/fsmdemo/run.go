package main

import (
	"fmt"

	"github.com/amp-labs/tickfsm/cli"
	"github.com/amp-labs/tickfsm/inspector"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		scriptPath   string
		snapshotPath string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play a YAML script and print the state after every tick",
		Long: `Plays a script of switch values against a fresh machine. Each step sets
switches, ticks (once unless "ticks" says otherwise) and optionally checks the
resulting state with "expect". Without --script a built-in script is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			script, err := loadScript(scriptPath)
			if err != nil {
				return err
			}

			c, err := a.newController()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			err = script.Run(cmd.Context(), c, func(r tickRecord) {
				fmt.Fprintf(out, "tick %d: %s (distance %.1f)\n", r.Tick, r.State, r.Distance)
			})
			if err != nil {
				return err
			}

			fmt.Fprint(out, cli.MachineBanner(c.Machine.Name(), c.Machine.TickCount(), currentState(c),
				switchValues(c), c.Switches()))

			if snapshotPath != "" {
				return inspector.Capture(c.Machine).Save(snapshotPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "Path to a YAML script")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Save a snapshot of the final position (.yaml or .json)")

	return cmd
}

package main

import (
	"errors"
	"fmt"

	"github.com/amp-labs/tickfsm/cli"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Flip switches by hand and tick the machine",
		Long: `Shows the machine position, lets you toggle switches, then asks how many
ticks to advance. Ctrl-C asks before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.newController()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			for {
				fmt.Fprint(out, cli.MachineBanner(c.Machine.Name(), c.Machine.TickCount(), currentState(c),
					switchValues(c), c.Switches()))

				values, err := cli.Toggle("Switches", c.Switches(), switchValues(c))
				if err != nil {
					if done, err := interactiveExit(err, cli.PromptConfirm); done {
						return err
					}

					continue
				}

				if err := applySwitches(c, values); err != nil {
					return err
				}

				ticks, err := cli.PromptTicks("Ticks")
				if err != nil {
					if done, err := interactiveExit(err, cli.PromptConfirm); done {
						return err
					}

					continue
				}

				for range ticks {
					if err := cmd.Context().Err(); err != nil {
						return nil //nolint:nilerr // interrupted by signal
					}

					c.Machine.TickContext(cmd.Context())
				}
			}
		},
	}
}

// interactiveExit decides whether a failed prompt ends the session. Ctrl-C
// asks for confirmation first; closed input ends it without asking.
func interactiveExit(err error, confirm func(label string) (bool, error)) (bool, error) {
	switch {
	case errors.Is(err, promptui.ErrEOF):
		return true, nil
	case !cli.Interrupted(err):
		return true, err
	}

	quit, confirmErr := confirm("Quit")
	if confirmErr != nil {
		return true, nil //nolint:nilerr // a second Ctrl-C quits
	}

	return quit, nil
}

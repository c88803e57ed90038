package main

import (
	"errors"

	"github.com/amp-labs/tickfsm/inspector"
	"github.com/spf13/cobra"
)

var errUnknownFormat = errors.New("unknown format")

func newInspectCmd(a *app) *cobra.Command {
	var (
		format     string
		scriptPath string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Dump every state's connections after running a script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			script, err := loadScript(scriptPath)
			if err != nil {
				return err
			}

			c, err := a.newController()
			if err != nil {
				return err
			}

			if err := script.Run(cmd.Context(), c, nil); err != nil {
				return err
			}

			return inspector.Capture(c.Machine).Write(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVar(&scriptPath, "script", "", "Path to a YAML script (default: built-in script)")

	return cmd
}

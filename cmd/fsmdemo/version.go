package main

import (
	"fmt"

	"github.com/amp-labs/tickfsm/build"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// buildInfo is a JSON build.Info injected with
// -ldflags "-X main.buildInfo=...".
var buildInfo string //nolint:gochecknoglobals

func newVersionCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := build.Current(buildInfo)

			if !verbose {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, info.Short())

				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2) //nolint:mnd

			if err := enc.Encode(info); err != nil {
				return err
			}

			return enc.Close()
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print commit, toolchain and dependency versions as YAML")

	return cmd
}

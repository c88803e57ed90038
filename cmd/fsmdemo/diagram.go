package main

import (
	"fmt"

	"github.com/amp-labs/tickfsm/inspector"
	"github.com/amp-labs/tickfsm/statemachine"
	"github.com/amp-labs/tickfsm/statemachine/visualizer"
	"github.com/spf13/cobra"
)

func newDiagramCmd(a *app) *cobra.Command {
	var (
		format       string
		snapshotPath string
		scriptPath   string
		indices      bool
		direction    string
		theme        string
	)

	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Print the machine as a Mermaid or Graphviz diagram",
		Long: `Prints the locomotion machine, or a saved snapshot, as a diagram. With
--script the machine is run first so the diagram shows its current and
previous state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := a.source(cmd, snapshotPath, scriptPath)
			if err != nil {
				return err
			}

			opts := visualizer.DefaultOptions().
				WithFenced(false).
				WithShowIndices(indices).
				WithDirection(direction).
				WithTheme(theme)

			var diagram string

			switch format {
			case "mermaid":
				diagram, err = visualizer.GenerateMermaidWithOptions(src, opts)
			case "dot":
				diagram, err = visualizer.GenerateDOT(src, opts)
			default:
				return fmt.Errorf("%w %q", errUnknownFormat, format)
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), diagram)

			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "Diagram format: mermaid or dot")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Render a saved snapshot instead of a fresh machine")
	cmd.Flags().StringVar(&scriptPath, "script", "", "Run a YAML script before rendering")
	cmd.Flags().BoolVar(&indices, "indices", false, "Prefix state labels with their index")
	cmd.Flags().StringVar(&direction, "direction", "TD", "Layout direction: TD or LR")
	cmd.Flags().StringVar(&theme, "theme", "default", "Mermaid class theme: default or dark")

	return cmd
}

// source returns the introspection source for read-only commands: a loaded
// snapshot, a machine after a script, or a fresh machine.
func (a *app) source(cmd *cobra.Command, snapshotPath, scriptPath string) (statemachine.Introspector, error) { //nolint:ireturn
	if snapshotPath != "" {
		snap, err := inspector.LoadSnapshot(snapshotPath)
		if err != nil {
			return nil, err
		}

		return snap, nil
	}

	c, err := a.newController()
	if err != nil {
		return nil, err
	}

	if scriptPath != "" {
		script, err := loadScript(scriptPath)
		if err != nil {
			return nil, err
		}

		if err := script.Run(cmd.Context(), c, nil); err != nil {
			return nil, err
		}
	}

	return c.Machine, nil
}

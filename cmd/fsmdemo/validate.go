package main

import (
	"errors"
	"fmt"

	"github.com/amp-labs/tickfsm/statemachine/validator"
	"github.com/spf13/cobra"
)

var errInvalidMachine = errors.New("machine has validation errors")

func newValidateCmd(a *app) *cobra.Command {
	var (
		snapshotPath string
		strict       bool
		otel         bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Lint the machine graph",
		Long: `Reports unreachable states, dead ends, self transitions and duplicate
transitions. With --strict warnings count as errors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := a.source(cmd, snapshotPath, "")
			if err != nil {
				return err
			}

			validate := validator.Validate
			if strict {
				validate = validator.ValidateStrict
			}

			result, err := validate(src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, result.String())

			if otel {
				issues, err := validator.ValidateOTELInstrumentation(src)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "%d instrumentation issue(s)\n", len(issues))

				for _, issue := range issues {
					fmt.Fprintf(out, "  [%s] %s\n", issue.Code, issue.Message)
				}
			}

			if result.HasErrors() {
				return errInvalidMachine
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Validate a saved snapshot instead of a fresh machine")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().BoolVar(&otel, "otel", false, "Also check that metric labels and span attributes tell states apart")

	return cmd
}

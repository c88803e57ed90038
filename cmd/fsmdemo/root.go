package main

import (
	"fmt"

	"github.com/amp-labs/tickfsm/cli"
	"github.com/amp-labs/tickfsm/config"
	"github.com/amp-labs/tickfsm/examples/locomotion"
	"github.com/amp-labs/tickfsm/logger"
	"github.com/amp-labs/tickfsm/telemetry"
	"github.com/spf13/cobra"
)

const appName = "fsmdemo"

// app carries the configuration and flags shared by every command.
type app struct {
	cfg       config.App
	envFiles  []string
	overrides map[string]string
	name      string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   appName,
		Short: "Drive a tick-based locomotion state machine",
		Long: `fsmdemo builds an Idle/Walk/Run state machine and ticks it from a YAML
script, an interactive prompt, an HTTP inspector or a parallel fleet.

Configuration comes from the environment and optional .env files; --set
overrides single variables.
Logs are written to stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return telemetry.Shutdown(cmd.Context())
		},
	}

	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, ".env files to load (default ./.env if present)")
	root.PersistentFlags().StringToStringVar(&a.overrides, "set", nil, "Override a configuration variable, as KEY=VALUE")
	root.PersistentFlags().StringVar(&a.name, "name", "locomotion", "Machine name used in logs, metrics and diagrams")

	root.AddCommand(
		newRunCmd(a),
		newDiagramCmd(a),
		newInspectCmd(a),
		newValidateCmd(a),
		newInteractiveCmd(a),
		newServeCmd(a),
		newFleetCmd(a),
		newVersionCmd(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load[config.App](a.overrides, a.envFiles...)
	if err != nil {
		return err
	}

	a.cfg = cfg

	if _, err := logger.ConfigureLogging(appName, cfg.Logging, logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return err
	}

	if err := telemetry.Initialize(cmd.Context(), cfg.Telemetry); err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	if handler := telemetry.LogHandler(appName); handler != nil {
		if _, err := logger.ConfigureLogging(appName, cfg.Logging,
			logger.WithOutput(cmd.ErrOrStderr()),
			logger.WithExtraHandler(handler)); err != nil {
			return err
		}
	}

	cli.SuppressBanners(cfg.CLI.NoBanner)

	return nil
}

func (a *app) newController() (*locomotion.Controller, error) {
	c, err := locomotion.New(a.name, locomotion.WithLogger(logger.MachineLogger{}))
	if err != nil {
		return nil, logger.AnnotateBuildError(err)
	}

	return c, nil
}

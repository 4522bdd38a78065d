package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acceptbench",
		Short: "acceptbench - acceptance rule evaluation for AVR and SMR units",
		Long: `acceptbench evaluates six-row bench test grids for automatic voltage
regulators (AVR) and switch-mode rectifiers (SMR) against fixed acceptance
limits.

Every measured cell gets a verdict (VALID, INVALID, ABNORMAL or NOT_EVALUATED)
and the grid is accepted only when no cell is INVALID.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newEvaluateCommand())
	cmd.AddCommand(newBatchCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newNewCommand())

	return cmd
}

func execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spboyer/acceptbench/internal/models"
	"github.com/spboyer/acceptbench/internal/wizard"
)

func newNewCommand() *cobra.Command {
	var (
		unit   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "new [serial]",
		Short: "Create a blank grid template",
		Long: `Create a six-row CSV grid template with the bench columns for a unit family.

When running in a terminal (TTY), launches an interactive wizard for the unit
family, serial number and output file. In non-interactive environments (CI,
pipes) the serial argument and --unit flag are required.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serial := ""
			if len(args) == 1 {
				serial = args[0]
			}
			return newCommandE(cmd, serial, unit, output)
		},
	}

	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Unit family: avr or smr")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Template file to write (default: <serial>.csv)")

	return cmd
}

func newCommandE(cmd *cobra.Command, serial, unitFlag, output string) error {
	// Check TTY from the command's input stream, not os.Stdin directly.
	isTTY := false
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		isTTY = isTerminal(f)
	}

	var spec *wizard.GridSpec
	if isTTY && unitFlag == "" {
		s, err := wizard.RunGridWizard(cmd.InOrStdin(), cmd.OutOrStdout(), serial)
		if err != nil {
			return err
		}
		spec = s
	} else {
		if unitFlag == "" {
			return fmt.Errorf("--unit is required when not running interactively")
		}
		u, err := models.ParseUnit(unitFlag)
		if err != nil {
			return err
		}
		if err := wizard.ValidateSerial(serial); err != nil {
			return err
		}
		spec = &wizard.GridSpec{Unit: u, Serial: serial}
	}
	if output != "" {
		spec.Output = output
	}

	path, err := wizard.CreateTemplate(spec)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s grid template %s\n", spec.Unit, path) //nolint:errcheck
	return nil
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spboyer/acceptbench/internal/batch"
	"github.com/spboyer/acceptbench/internal/dataset"
	"github.com/spboyer/acceptbench/internal/models"
)

func newValidateCommand() *cobra.Command {
	var unit string

	cmd := &cobra.Command{
		Use:   "validate <grid|dir>...",
		Short: "Check grid files without evaluating them",
		Long: `Check that grid files can be read: YAML and JSON grids are validated against
the grid schema, and every grid is decoded and checked for exactly six rows.
No acceptance limits are applied.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateCommandE(cmd, args, unit)
		},
	}

	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Unit family for CSV grids: avr or smr (default: detect from headers)")

	return cmd
}

func validateCommandE(cmd *cobra.Command, args []string, unitFlag string) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	unit, err := resolveUnit(unitFlag, cfg)
	if err != nil {
		return err
	}
	paths, err := batch.CollectGrids(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	invalid := 0
	for _, p := range paths {
		if err := validateGrid(p, unit); err != nil {
			invalid++
			fmt.Fprintf(out, "❌ %s\n   %v\n", p, err) //nolint:errcheck
			continue
		}
		fmt.Fprintf(out, "✅ %s\n", p) //nolint:errcheck
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d grid file(s) invalid", invalid, len(paths))
	}
	return nil
}

func validateGrid(path string, unit models.Unit) error {
	grid, err := dataset.LoadGrid(path, unit)
	if err != nil {
		var se *dataset.SchemaError
		if errors.As(err, &se) {
			return fmt.Errorf("schema: %d problem(s): %v", len(se.Problems), se.Problems)
		}
		return err
	}
	return models.CheckRowCount(grid.Len())
}

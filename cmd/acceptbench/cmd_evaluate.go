package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spboyer/acceptbench/internal/dataset"
	"github.com/spboyer/acceptbench/internal/engine"
	"github.com/spboyer/acceptbench/internal/reporting"
)

type evaluateOptions struct {
	unit    string
	formats []string
	output  string
	verbose bool
}

func newEvaluateCommand() *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate <grid>",
		Short: "Evaluate one acceptance grid",
		Long: `Evaluate a six-row bench grid (CSV, YAML or JSON) against the acceptance
limits for its unit family.

Without --output the report is printed in each requested format. With --output
the summary is printed (plus the verdict table with --verbose) and every format
is written to the directory.

Exit status is 0 when the grid is accepted, 1 when it is rejected and 2 when the
grid cannot be read or evaluated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return evaluateCommandE(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.unit, "unit", "u", "", "Unit family for CSV grids: avr or smr (default: detect from headers)")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", nil, "Output formats: text, json, junit, markdown, html")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Directory to write report files to")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print the verdict table for every cell")

	return cmd
}

func evaluateCommandE(cmd *cobra.Command, path string, opts evaluateOptions) error {
	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	unit, err := resolveUnit(opts.unit, cfg)
	if err != nil {
		return err
	}
	formats, err := resolveFormats(opts.formats, cfg)
	if err != nil {
		return err
	}

	grid, err := dataset.LoadGrid(path, unit)
	if err != nil {
		return err
	}
	slog.Debug("Loaded grid", "path", path, "unit", grid.Unit, "rows", grid.Len())

	report, err := engine.Evaluate(grid)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	at := now()

	if opts.output == "" {
		for _, f := range formats {
			data, err := reporting.Render(report, f, at)
			if err != nil {
				return err
			}
			if _, err := out.Write(data); err != nil {
				return err
			}
		}
	} else {
		fmt.Fprint(out, reporting.FormatSummaryReport(report)) //nolint:errcheck
		names, err := reporting.Emit(reporting.DirSink{Dir: opts.output}, report, formats, at)
		if err != nil {
			return err
		}
		if boolSetting(opts.verbose, cfg.Defaults.Verbose) {
			fmt.Fprintln(out) //nolint:errcheck
			reporting.WriteVerdictTable(out, report, false)
		}
		for _, n := range names {
			fmt.Fprintf(out, "Wrote %s\n", filepath.Join(opts.output, n)) //nolint:errcheck
		}
	}

	if !report.Passed() {
		return &RejectedError{Message: fmt.Sprintf("%s: %s", path, reporting.InterpretResult(report))}
	}
	return nil
}

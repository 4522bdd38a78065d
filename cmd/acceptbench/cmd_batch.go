package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spboyer/acceptbench/internal/batch"
	"github.com/spboyer/acceptbench/internal/models"
	"github.com/spboyer/acceptbench/internal/reporting"
	"github.com/spboyer/acceptbench/internal/spinner"
)

type batchOptions struct {
	unit    string
	formats []string
	output  string
	workers int
	archive bool
	verbose bool
}

func newBatchCommand() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "batch [dir|grid...]",
		Short: "Evaluate many acceptance grids concurrently",
		Long: `Evaluate every grid file given on the command line. Directories are expanded
to the .csv, .yaml, .yml and .json files directly inside them. With no
arguments the configured grids directory is used.

Each report is written to the output directory in the requested formats,
together with a combined JUnit file and, with --archive, a gzip JSON archive
of all reports.

Exit status is 2 if any grid could not be evaluated, otherwise 1 if any grid
was rejected, otherwise 0.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return batchCommandE(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.unit, "unit", "u", "", "Unit family for CSV grids: avr or smr (default: detect from headers)")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", nil, "Per-grid output formats: text, json, junit, markdown, html")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Directory to write reports to (default: configured results directory)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of concurrent workers (default: 4)")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "Also write a gzip JSON archive of all reports")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print progress as grids are evaluated")

	return cmd
}

func batchCommandE(cmd *cobra.Command, args []string, opts batchOptions) error {
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

	if len(args) == 0 {
		args = []string{cfg.Paths.Grids}
	}
	paths, err := batch.CollectGrids(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no grid files found in %v", args)
	}

	workers := opts.workers
	if workers <= 0 {
		workers = cfg.Defaults.Workers
	}
	output := opts.output
	if output == "" {
		output = cfg.Paths.Results
	}

	runOpts := batch.Options{Workers: workers, Unit: unit}
	errOut := cmd.ErrOrStderr()
	stopSpinner := func() {}
	switch {
	case boolSetting(opts.verbose, cfg.Defaults.Verbose):
		runOpts.Progress = func(ev batch.ProgressEvent) { printProgress(errOut, ev) }
	case isTerminal(errOut):
		spin := spinner.Start(errOut, fmt.Sprintf("Evaluating %d grid(s)", len(paths)))
		stopSpinner = spin.Stop
		done := 0
		runOpts.Progress = func(ev batch.ProgressEvent) {
			if ev.EventType != batch.EventGridStart {
				done++
				spin.Set(fmt.Sprintf("Evaluating %d grid(s) (%d done)", ev.Total, done))
			}
		}
	}

	items, runErr := batch.NewRunner(runOpts).Run(cmd.Context(), paths)
	stopSpinner()

	out := cmd.OutOrStdout()
	printItems(out, items)
	summary := batch.Summarize(items)
	fmt.Fprintf(out, "\n%d grid(s): %d accepted, %d rejected, %d error(s)\n", //nolint:errcheck
		summary.Total, summary.Passed, summary.Failed, summary.Errored)

	if runErr != nil {
		return runErr
	}

	reports := batch.Reports(items)
	if len(reports) > 0 {
		sink := reporting.DirSink{Dir: output}
		at := now()
		for _, r := range reports {
			if _, err := reporting.Emit(sink, r, formats, at); err != nil {
				return err
			}
		}
		if err := reporting.EmitBatch(sink, reports, boolSetting(opts.archive, cfg.Defaults.Archive), at); err != nil {
			return err
		}
		fmt.Fprintf(out, "Reports written to %s\n", output) //nolint:errcheck
	}

	switch {
	case summary.Errored > 0:
		return fmt.Errorf("%d grid(s) could not be evaluated", summary.Errored)
	case summary.Failed > 0:
		return &RejectedError{Message: fmt.Sprintf("%d of %d grid(s) rejected", summary.Failed, summary.Total)}
	}
	return nil
}

func printItems(w io.Writer, items []batch.Item) {
	for _, it := range items {
		switch {
		case it.Err != nil:
			fmt.Fprintf(w, "⚠️ ERROR  %s: %v\n", it.Path, it.Err) //nolint:errcheck
		case it.Report == nil:
			fmt.Fprintf(w, "⚠️ SKIP   %s\n", it.Path) //nolint:errcheck
		case it.Report.Result == models.ResultPass:
			fmt.Fprintf(w, "✅ PASS   %s  %s\n", it.Path, reporting.InterpretResult(it.Report)) //nolint:errcheck
		default:
			fmt.Fprintf(w, "❌ FAIL   %s  %s\n", it.Path, reporting.InterpretResult(it.Report)) //nolint:errcheck
		}
	}
}

func printProgress(w io.Writer, ev batch.ProgressEvent) {
	switch ev.EventType {
	case batch.EventGridStart:
		fmt.Fprintf(w, "[%d/%d] %s\n", ev.GridNum, ev.Total, ev.Path) //nolint:errcheck
	case batch.EventGridComplete:
		fmt.Fprintf(w, "[%d/%d] %s: %s\n", ev.GridNum, ev.Total, ev.Path, ev.Result) //nolint:errcheck
	case batch.EventGridError:
		fmt.Fprintf(w, "[%d/%d] %s: %v\n", ev.GridNum, ev.Total, ev.Path, ev.Err) //nolint:errcheck
	}
}

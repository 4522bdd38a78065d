// Package batch evaluates many grid files concurrently.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spboyer/acceptbench/internal/dataset"
	"github.com/spboyer/acceptbench/internal/engine"
	"github.com/spboyer/acceptbench/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when Options.Workers is not positive.
const DefaultWorkers = 4

// gridExtensions are the file types picked up from directories.
var gridExtensions = []string{".csv", ".yaml", ".yml", ".json"}

// EventType identifies a progress notification.
type EventType string

const (
	EventGridStart    EventType = "grid_start"
	EventGridComplete EventType = "grid_complete"
	EventGridError    EventType = "grid_error"
)

// ProgressEvent is sent to Options.Progress as grids are processed.
type ProgressEvent struct {
	EventType EventType
	Path      string
	GridNum   int
	Total     int
	Result    models.Result
	Err       error
}

// Options controls a batch run.
type Options struct {
	Workers int
	// Unit is passed to the loader for CSV grids; empty means detect.
	Unit models.Unit
	// Progress, when set, is called from one goroutine at a time.
	Progress func(ProgressEvent)
}

// Item is the outcome for one grid file. Exactly one of Report and Err is set;
// grids skipped because the run was cancelled carry the context error.
type Item struct {
	Path   string
	Report *models.EvaluationReport
	Err    error
}

// Summary counts batch outcomes.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Errored int
}

// Summarize tallies items.
func Summarize(items []Item) Summary {
	s := Summary{Total: len(items)}
	for _, it := range items {
		switch {
		case it.Err != nil || it.Report == nil:
			s.Errored++
		case it.Report.Passed():
			s.Passed++
		default:
			s.Failed++
		}
	}
	return s
}

// Reports returns the reports of the items that evaluated, in input order.
func Reports(items []Item) []*models.EvaluationReport {
	var out []*models.EvaluationReport
	for _, it := range items {
		if it.Report != nil {
			out = append(out, it.Report)
		}
	}
	return out
}

// Runner evaluates grid files with a bounded number of workers.
type Runner struct {
	opts Options
	mu   sync.Mutex
}

// NewRunner creates a runner.
func NewRunner(opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Runner{opts: opts}
}

// Run evaluates every path and returns one item per path in input order. A
// grid that fails to load or evaluate is recorded on its item and does not stop
// the others. The returned error is non-nil only when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Item, error) {
	items := make([]Item, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i] = Item{Path: path, Err: err}
				return err
			}

			r.notify(ProgressEvent{EventType: EventGridStart, Path: path, GridNum: i + 1, Total: len(paths)})

			items[i] = r.evaluateFile(path)
			if items[i].Err != nil {
				slog.Debug("Grid evaluation failed", "path", path, "error", items[i].Err)
				r.notify(ProgressEvent{EventType: EventGridError, Path: path, GridNum: i + 1, Total: len(paths), Err: items[i].Err})
				return nil
			}
			r.notify(ProgressEvent{
				EventType: EventGridComplete,
				Path:      path,
				GridNum:   i + 1,
				Total:     len(paths),
				Result:    items[i].Report.Result,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return items, fmt.Errorf("batch cancelled: %w", err)
	}
	return items, nil
}

func (r *Runner) evaluateFile(path string) Item {
	grid, err := dataset.LoadGrid(path, r.opts.Unit)
	if err != nil {
		return Item{Path: path, Err: err}
	}
	report, err := engine.Evaluate(grid)
	if err != nil {
		return Item{Path: path, Err: fmt.Errorf("%s: %w", path, err)}
	}
	return Item{Path: path, Report: report}
}

func (r *Runner) notify(ev ProgressEvent) {
	if r.opts.Progress == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.Progress(ev)
}

// CollectGrids expands directories into the grid files directly inside them
// (sorted by name) and keeps file arguments as given. Duplicates are dropped.
func CollectGrids(args []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("grid path %q: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			if slices.Contains(gridExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
				add(filepath.Join(arg, e.Name()))
			}
		}
	}
	return out, nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spboyer/acceptbench/internal/models"
	"github.com/spboyer/acceptbench/internal/projectconfig"
	"github.com/spboyer/acceptbench/internal/reporting"
	"golang.org/x/term"
)

// now is replaced in tests to get stable report timestamps.
var now = time.Now

// loadProjectConfig reads .acceptbench.yaml from the working directory upward.
func loadProjectConfig() (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return projectconfig.Load(wd)
}

// resolveUnit prefers the --unit flag over the configured default. An empty
// result leaves unit detection to the loader.
func resolveUnit(flag string, cfg *projectconfig.ProjectConfig) (models.Unit, error) {
	s := flag
	if s == "" {
		s = cfg.Defaults.Unit
	}
	if s == "" {
		return "", nil
	}
	u, err := models.ParseUnit(s)
	if err != nil {
		return "", fmt.Errorf("--unit: %w", err)
	}
	return u, nil
}

// resolveFormats prefers --format values over the configured defaults.
func resolveFormats(flag []string, cfg *projectconfig.ProjectConfig) ([]reporting.Format, error) {
	names := flag
	if len(names) == 0 {
		names = cfg.Defaults.Formats
	}
	formats, err := reporting.ParseFormats(names)
	if err != nil {
		return nil, fmt.Errorf("--format: %w", err)
	}
	if len(formats) == 0 {
		formats = []reporting.Format{reporting.FormatText}
	}
	return formats, nil
}

func boolSetting(flag bool, def *bool) bool {
	return flag || (def != nil && *def)
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Package projectconfig provides the ProjectConfig struct and loader for
// .acceptbench.yaml project-level configuration files.
//
// Only file locations and output preferences live here. Acceptance limits are
// fixed in the rules package and cannot be configured.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/acceptbench/internal/utils"
	"github.com/spboyer/acceptbench/internal/validation"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".acceptbench.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultGridsDir   = "grids/"
	DefaultResultsDir = "results/"

	DefaultWorkers = 4
	DefaultFormat  = "text"
)

// PathsConfig holds directory paths for grids and results.
type PathsConfig struct {
	Grids   string `yaml:"grids,omitempty"`
	Results string `yaml:"results,omitempty"`
}

// DefaultsConfig holds default evaluation parameters.
type DefaultsConfig struct {
	// Unit is used for CSV grids whose headers do not identify the unit.
	Unit    string   `yaml:"unit,omitempty"`
	Workers int      `yaml:"workers,omitempty"`
	Formats []string `yaml:"formats,omitempty"`
	Archive *bool    `yaml:"archive,omitempty"`
	Verbose *bool    `yaml:"verbose,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .acceptbench.yaml.
type ProjectConfig struct {
	Paths    PathsConfig    `yaml:"paths,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Grids:   DefaultGridsDir,
			Results: DefaultResultsDir,
		},
		Defaults: DefaultsConfig{
			Unit:    "",
			Workers: DefaultWorkers,
			Formats: []string{DefaultFormat},
			Archive: boolPtr(false),
			Verbose: boolPtr(false),
		},
	}
}

// Load finds .acceptbench.yaml by walking up from startDir (max 10 levels),
// validates and unmarshals it, and fills in missing fields with defaults.
// Relative paths in the file are resolved against the file's directory.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, cfgDir, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	if problems := validation.ValidateConfigBytes(data); len(problems) > 0 {
		return nil, fmt.Errorf("invalid %s: %s", FileName, strings.Join(problems, "; "))
	}

	utils.ResolveInPlace(cfgDir, &fileCfg.Paths.Grids, &fileCfg.Paths.Results)
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .acceptbench.yaml (max 10
// levels) and returns its contents and directory. Returns os.ErrNotExist if no
// config file is found.
func findConfigFile(dir string) ([]byte, string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Paths.Grids != "" {
		dst.Paths.Grids = src.Paths.Grids
	}
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}

	if src.Defaults.Unit != "" {
		dst.Defaults.Unit = src.Defaults.Unit
	}
	if src.Defaults.Workers != 0 {
		dst.Defaults.Workers = src.Defaults.Workers
	}
	if len(src.Defaults.Formats) > 0 {
		dst.Defaults.Formats = src.Defaults.Formats
	}
	if src.Defaults.Archive != nil {
		dst.Defaults.Archive = src.Defaults.Archive
	}
	if src.Defaults.Verbose != nil {
		dst.Defaults.Verbose = src.Defaults.Verbose
	}
}

func boolPtr(b bool) *bool {
	return &b
}

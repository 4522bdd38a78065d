package dataset

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/acceptbench/internal/models"
	"github.com/spboyer/acceptbench/internal/validation"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnitUnknown is returned when a CSV grid's unit is neither given nor
	// recognizable from its headers.
	ErrUnitUnknown = errors.New("grid: unit could not be determined")

	// ErrUnitMismatch is returned when a grid file declares a different unit
	// than the one requested.
	ErrUnitMismatch = errors.New("grid: unit mismatch")

	// ErrUnsupportedFormat is returned for files that are not CSV, YAML or JSON.
	ErrUnsupportedFormat = errors.New("grid: unsupported file format")
)

// SchemaError reports a structured grid file that does not match the grid schema.
type SchemaError struct {
	Path     string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s does not match the grid schema:\n  %s", e.Path, strings.Join(e.Problems, "\n  "))
}

// gridFile is the on-disk shape of a YAML or JSON grid.
type gridFile struct {
	Unit   string           `yaml:"unit"`
	Serial string           `yaml:"serial"`
	Rows   []map[string]any `yaml:"rows"`
}

// LoadGrid reads a grid from a CSV, YAML or JSON file. unit may be empty: YAML
// and JSON grids declare their own unit, and CSV grids fall back to header
// detection. The serial defaults to the file name without extension.
func LoadGrid(path string, unit models.Unit) (models.Grid, error) {
	serial := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch {
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		rows, err := LoadCSV(path)
		if err != nil {
			return models.Grid{}, err
		}
		if unit == "" {
			detected, ok := DetectUnit(rows)
			if !ok {
				return models.Grid{}, fmt.Errorf("%s: %w; pass --unit", path, ErrUnitUnknown)
			}
			unit = detected
		}
		grid, err := DecodeRows(unit, rowsToAny(rows))
		if err != nil {
			return models.Grid{}, fmt.Errorf("%s: %w", path, err)
		}
		grid.Serial = serial
		return grid, nil

	case validation.IsStructuredGrid(path):
		data, err := os.ReadFile(path)
		if err != nil {
			return models.Grid{}, fmt.Errorf("reading grid file: %w", err)
		}
		if problems := validation.ValidateGridBytes(data); len(problems) > 0 {
			return models.Grid{}, &SchemaError{Path: path, Problems: problems}
		}

		var gf gridFile
		if err := yaml.Unmarshal(data, &gf); err != nil {
			return models.Grid{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		declared, err := models.ParseUnit(gf.Unit)
		if err != nil {
			return models.Grid{}, fmt.Errorf("%s: %w", path, err)
		}
		if unit != "" && unit != declared {
			return models.Grid{}, fmt.Errorf("%s: %w: file is %s, requested %s", path, ErrUnitMismatch, declared, unit)
		}

		grid, err := DecodeRows(declared, gf.Rows)
		if err != nil {
			return models.Grid{}, fmt.Errorf("%s: %w", path, err)
		}
		grid.Serial = serial
		if gf.Serial != "" {
			grid.Serial = gf.Serial
		}
		return grid, nil

	default:
		return models.Grid{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// DetectUnit guesses the unit from the columns of the first row. Load and Line
// only exist on AVR sheets; PF (in) and Ripple (out) only on SMR sheets.
func DetectUnit(rows []Row) (models.Unit, bool) {
	if len(rows) == 0 {
		return "", false
	}
	has := func(col string) bool {
		_, ok := rows[0][col]
		return ok
	}
	switch {
	case has(models.ColLoad) && has(models.ColLine):
		return models.UnitAVR, true
	case has(models.ColPFIn) && has(models.ColRippleOut):
		return models.UnitSMR, true
	default:
		return "", false
	}
}

// DecodeRows converts raw rows into a typed grid. Every required column must
// be present and non-blank in every row; optional columns may be blank. The row
// count is not checked here.
func DecodeRows(unit models.Unit, raw []map[string]any) (models.Grid, error) {
	grid := models.Grid{Unit: unit}

	switch unit {
	case models.UnitAVR:
		grid.AVR = make([]models.AVRRow, len(raw))
		for i, r := range raw {
			if err := decodeRow(i, r, models.AVRRequiredColumns, models.AVRGridColumns, &grid.AVR[i]); err != nil {
				return models.Grid{}, err
			}
		}
	case models.UnitSMR:
		grid.SMR = make([]models.SMRRow, len(raw))
		for i, r := range raw {
			if err := decodeRow(i, r, models.SMRRequiredColumns, models.SMRGridColumns, &grid.SMR[i]); err != nil {
				return models.Grid{}, err
			}
		}
	default:
		return models.Grid{}, fmt.Errorf("'%s' is not a valid unit (expected avr or smr)", unit)
	}

	return grid, nil
}

func decodeRow(index int, raw map[string]any, required, known []string, out any) error {
	cells := make(map[string]any, len(raw))
	for k, v := range raw {
		col := CanonicalColumn(k)
		if !slices.Contains(known, col) {
			continue
		}
		cells[col] = v
	}

	typed := make(map[string]any, len(cells))
	for _, col := range known {
		v, ok := cells[col]
		if !ok || isBlank(v) {
			if slices.Contains(required, col) {
				return fmt.Errorf("row %d: %w: %q", index+1, models.ErrMissingField, col)
			}
			continue
		}

		if col == models.ColLoad || col == models.ColLine {
			reg, err := toRegulation(v)
			if err != nil {
				return fmt.Errorf("row %d, column %q: %w", index+1, col, err)
			}
			typed[col] = reg
			continue
		}

		f, err := toFloat(v)
		if err != nil {
			return fmt.Errorf("row %d, column %q: %w", index+1, col, err)
		}
		typed[col] = f
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(typed); err != nil {
		return fmt.Errorf("row %d: %w", index+1, err)
	}
	return nil
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(n), "%")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", models.ErrNonNumeric, n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: %v", models.ErrNonNumeric, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", models.ErrNonNumeric, v)
	}
	return f, nil
}

func toRegulation(v any) (models.Regulation, error) {
	if s, ok := v.(string); ok {
		return models.ParseRegulation(s)
	}
	f, err := toFloat(v)
	if err != nil {
		return models.Regulation{}, err
	}
	return models.Reg(f), nil
}

func rowsToAny(rows []Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		m := make(map[string]any, len(r))
		for k, v := range r {
			m[k] = v
		}
		out[i] = m
	}
	return out
}

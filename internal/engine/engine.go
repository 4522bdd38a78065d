// Package engine runs an acceptance grid through its rule set and aggregates
// the per-cell verdicts into an [models.EvaluationReport].
//
// Evaluation is a pure function of the grid: no state is kept between calls,
// and the rated context or module classification is derived afresh each time.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spboyer/acceptbench/internal/models"
	"github.com/spboyer/acceptbench/internal/rules"
	"github.com/spboyer/acceptbench/internal/utils"
)

// Evaluate checks the grid shape, runs the unit's rule set and aggregates the
// result. Malformed input is rejected before any check runs.
func Evaluate(grid models.Grid) (*models.EvaluationReport, error) {
	rs, err := rules.Create(grid.Unit)
	if err != nil {
		return nil, err
	}

	if err := models.CheckRowCount(grid.Len()); err != nil {
		return nil, fmt.Errorf("evaluating %s grid: %w", grid.Unit, err)
	}
	if err := checkFinite(grid); err != nil {
		return nil, fmt.Errorf("evaluating %s grid: %w", grid.Unit, err)
	}

	outcome, err := rs.Evaluate(grid)
	if err != nil {
		return nil, fmt.Errorf("evaluating %s grid: %w", grid.Unit, err)
	}

	report := Aggregate(grid.Unit, outcome)
	report.Serial = grid.Serial

	slog.Debug("Grid evaluated",
		"unit", grid.Unit,
		"serial", grid.Serial,
		"result", report.Result,
		"failures", len(report.Failures),
		"abnormal", len(report.Abnormal))
	utils.VerdictsToSlog(report)

	return report, nil
}

// EvaluateAVR evaluates six AVR rows.
func EvaluateAVR(rows []models.AVRRow) (*models.EvaluationReport, error) {
	return Evaluate(models.Grid{Unit: models.UnitAVR, AVR: rows})
}

// EvaluateSMR evaluates six SMR rows.
func EvaluateSMR(rows []models.SMRRow) (*models.EvaluationReport, error) {
	return Evaluate(models.Grid{Unit: models.UnitSMR, SMR: rows})
}

type cell struct {
	column string
	value  float64
}

// checkFinite rejects NaN and infinite values in every column the rule sets
// read. Comparisons against NaN are always false, so such a cell would
// otherwise pass every limit.
func checkFinite(grid models.Grid) error {
	for i := 0; i < grid.Len(); i++ {
		var cells []cell
		if grid.Unit == models.UnitSMR {
			r := grid.SMR[i]
			cells = []cell{
				{models.ColVIn, r.VIn}, {models.ColVOut, r.VOut}, {models.ColIOut, r.IOut},
				{models.ColPFIn, r.PFIn}, {models.ColEfficiency, r.Efficiency}, {models.ColIthdIn, r.IthdIn},
				{models.ColVthdIn, r.VthdIn}, {models.ColRippleOut, r.RippleOut},
			}
		} else {
			r := grid.AVR[i]
			cells = []cell{
				{models.ColVIn, r.VIn}, {models.ColIIn, r.IIn}, {models.ColKWIn, r.KWIn},
				{models.ColVOut, r.VOut}, {models.ColIOut, r.IOut}, {models.ColKWOut, r.KWOut},
				{models.ColVTHDOut, r.VTHDOut}, {models.ColEfficiency, r.Efficiency},
			}
			if r.Load.Applicable {
				cells = append(cells, cell{models.ColLoad, r.Load.Value})
			}
			if r.Line.Applicable {
				cells = append(cells, cell{models.ColLine, r.Line.Value})
			}
		}

		for _, c := range cells {
			if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
				return fmt.Errorf("row %d, column %q: %w", i+1, c.column, models.ErrNonNumeric)
			}
		}
	}
	return nil
}

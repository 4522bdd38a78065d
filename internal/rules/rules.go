// Package rules holds the fixed acceptance rule sets for AVR and SMR grids.
// Every limit in this package is a compile-time constant; nothing here can be
// configured at runtime.
package rules

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/spboyer/acceptbench/internal/models"
)

// ErrUnknownUnit is returned by [Create] for a unit with no rule set.
var ErrUnknownUnit = errors.New("rules: unknown unit")

// ErrWrongUnit is returned when a rule set is handed a grid for another unit.
var ErrWrongUnit = errors.New("rules: grid unit does not match rule set")

// ReferenceRowIndex is the 0-based grid row ("row 3", sheet row 4) that the
// AVR rated values are derived from.
const ReferenceRowIndex = 2

// RuleSet is the interface shared by the AVR and SMR rule sets.
type RuleSet interface {
	// Unit returns the unit family the rule set evaluates.
	Unit() models.Unit

	// Checks returns the check names in the order they run.
	Checks() []string

	// Evaluate runs every check against every row. The grid must already have
	// exactly [models.RowCount] rows.
	Evaluate(grid models.Grid) (*Outcome, error)
}

// Outcome is the raw, unaggregated product of a rule set run.
type Outcome struct {
	Module   *models.ModuleClassification
	Rated    *models.RatedContext
	Verdicts []models.CellVerdict
}

// Create returns the rule set for unit.
func Create(unit models.Unit) (RuleSet, error) {
	switch unit {
	case models.UnitAVR:
		return NewAVRRuleSet(), nil
	case models.UnitSMR:
		return NewSMRRuleSet(), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownUnit, unit)
	}
}

// withinPercent reports whether measured lies in nominal ± tolPct percent,
// bounds inclusive.
func withinPercent(measured, nominal, tolPct float64) bool {
	tol := tolPct / 100.0
	return nominal*(1-tol) <= measured && measured <= nominal*(1+tol)
}

// withinAbs reports whether measured lies in target ± tol, bounds inclusive.
func withinAbs(measured, target, tol float64) bool {
	return target-tol <= measured && measured <= target+tol
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func statusOf(invalid bool) models.Status {
	if invalid {
		return models.StatusInvalid
	}
	return models.StatusValid
}

// num formats a limit value without trailing zeros noise.
func num(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}

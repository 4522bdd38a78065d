package engine

import (
	"slices"

	"github.com/spboyer/acceptbench/internal/models"
	"github.com/spboyer/acceptbench/internal/rules"
)

// Aggregate merges a rule set outcome into a report. The grid fails when any
// cell is INVALID; abnormal cells are listed separately and never change the
// result. Nothing is clamped or de-duplicated, so one row may contribute
// several failing cells.
func Aggregate(unit models.Unit, outcome *rules.Outcome) *models.EvaluationReport {
	report := &models.EvaluationReport{
		Unit:     unit,
		Verdicts: slices.Clone(outcome.Verdicts),
		Result:   models.ResultPass,
		Failures: []models.CellVerdict{},
		Abnormal: []models.CellVerdict{},
	}

	if outcome.Module != nil {
		m := *outcome.Module
		report.Module = &m
	}
	if outcome.Rated != nil {
		r := *outcome.Rated
		report.Rated = &r
	}

	for _, v := range report.Verdicts {
		if v.Failed() {
			report.Failures = append(report.Failures, v)
		}
		if v.Abnormal {
			report.Abnormal = append(report.Abnormal, v)
		}
	}
	if len(report.Failures) > 0 {
		report.Result = models.ResultFail
	}

	return report
}

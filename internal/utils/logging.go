package utils

import (
	"context"
	"log/slog"

	"github.com/spboyer/acceptbench/internal/models"
)

// VerdictsToSlog logs every flagged cell of a report at debug level. Cells
// that are VALID or NOT_EVALUATED and not abnormal are skipped.
func VerdictsToSlog(report *models.EvaluationReport) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	for _, v := range report.Verdicts {
		if v.Status != models.StatusInvalid && !v.Abnormal {
			continue
		}

		attrs := []any{
			"row", v.ExcelRow,
			"column", v.Column,
			"status", v.Status,
		}
		attrs = addIf(attrs, "check", v.Check)
		attrs = addIf(attrs, "limit", v.Limit)
		attrs = append(attrs, "measured", v.Measured)
		if v.Abnormal {
			attrs = append(attrs, "abnormal", true)
		}

		slog.Debug("Cell flagged", attrs...)
	}
}

func addIf[T comparable](attrs []any, name string, v T) []any {
	var zero T
	if v != zero {
		attrs = append(attrs, name, v)
	}

	return attrs
}

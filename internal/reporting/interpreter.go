package reporting

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spboyer/acceptbench/internal/models"
)

// InterpretResult returns a plain-language label for the overall verdict.
func InterpretResult(r *models.EvaluationReport) string {
	switch {
	case !r.Passed():
		return fmt.Sprintf("Rejected (%d cell(s) outside limits)", len(r.Failures))
	case len(r.Abnormal) > 0:
		return fmt.Sprintf("Accepted, review %d abnormal cell(s)", len(r.Abnormal))
	default:
		return "Accepted"
	}
}

// InterpretModule explains the SMR classification, or the AVR rated context.
func InterpretModule(r *models.EvaluationReport) string {
	switch {
	case r.Module != nil:
		return fmt.Sprintf("%s, rated %s A", r.Module.Type, formatNumber(r.Module.RatedCurrentA))
	case r.Rated != nil:
		return fmt.Sprintf("rated %s W, load current %s A, input current %s A",
			formatNumber(r.Rated.RatedPowerW),
			formatNumber(r.Rated.RatedLoadCurrentA),
			formatNumber(r.Rated.RatedInputCurrentA))
	default:
		return ""
	}
}

// FormatSummaryReport produces the plain-text bench summary for one grid.
// The lines after the header are the legacy summary block used on submission
// sheets.
func FormatSummaryReport(r *models.EvaluationReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== %s (%s) ===\n", ReportName(r), strings.ToUpper(string(r.Unit))))
	if ctx := InterpretModule(r); ctx != "" {
		b.WriteString(fmt.Sprintf("Context: %s\n", ctx))
	}
	b.WriteString(fmt.Sprintf("Verdict: %s\n\n", InterpretResult(r)))
	b.WriteString(r.Summary())
	b.WriteString("\n")

	return b.String()
}

// ReportName is the display and file name stem for a report: the serial when
// known, the unit otherwise.
func ReportName(r *models.EvaluationReport) string {
	if r.Serial != "" {
		return r.Serial
	}
	return string(r.Unit)
}

// fileStem turns a report name into something safe to use as a file name.
func fileStem(r *models.EvaluationReport) string {
	name := filepath.Base(ReportName(r))
	return strings.Map(func(c rune) rune {
		switch c {
		case ' ', '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return c
	}, name)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

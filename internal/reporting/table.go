package reporting

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/acceptbench/internal/models"
)

// statusIcon is the one-glyph marker shown next to each status.
func statusIcon(v models.CellVerdict) string {
	switch {
	case v.Status == models.StatusInvalid:
		return "❌"
	case v.Abnormal || v.Status == models.StatusAbnormal:
		return "⚠️"
	case v.Status == models.StatusNotEvaluated:
		return "—"
	default:
		return "✅"
	}
}

// WriteVerdictTable prints every verdict as an aligned terminal table. With
// onlyFlagged set, VALID and NOT_EVALUATED cells are left out.
func WriteVerdictTable(w io.Writer, r *models.EvaluationReport, onlyFlagged bool) {
	headers := []string{"Row", "Column", "Check", "Status", "Measured", "Limit"}

	var rows [][]string
	for _, v := range r.Verdicts {
		if onlyFlagged && !v.Failed() && !v.Abnormal {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(v.ExcelRow),
			v.Column,
			v.Check,
			statusIcon(v) + " " + string(v.Status),
			formatNumber(v.Measured),
			v.Limit,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			if i == len(cells)-1 {
				parts[i] = c
				continue
			}
			parts[i] = padRight(c, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " ")) //nolint:errcheck
	}

	writeRow(headers)
	sep := make([]string, len(headers))
	for i := range headers {
		sep[i] = strings.Repeat("─", widths[i])
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

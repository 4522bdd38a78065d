package reporting

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/spboyer/acceptbench/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// RenderMarkdown renders the engineering result for one grid as markdown: a
// status line, the failing and abnormal cells grouped by column, and the full
// verdict table.
func RenderMarkdown(r *models.EvaluationReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("## Acceptance Result: %s\n\n", ReportName(r)))

	resultIcon := "✅ PASS"
	if !r.Passed() {
		resultIcon = "❌ FAIL"
	}
	b.WriteString(fmt.Sprintf("**Unit:** %s | **Result:** %s | **Failures:** %d | **Abnormal:** %d\n\n",
		strings.ToUpper(string(r.Unit)), resultIcon, len(r.Failures), len(r.Abnormal)))

	if ctx := InterpretModule(r); ctx != "" {
		b.WriteString(fmt.Sprintf("- **Context:** %s\n\n", ctx))
	}

	if invalid := r.InvalidByColumn(); len(invalid) > 0 {
		b.WriteString("### Failing Cells\n\n")
		for _, c := range invalid {
			b.WriteString(fmt.Sprintf("- **%s** in rows %s\n", c.Column, joinInts(c.Rows)))
		}
		b.WriteString("\n")
	}
	if abnormal := r.AbnormalByColumn(); len(abnormal) > 0 {
		b.WriteString("### Abnormal Cells\n\n")
		for _, c := range abnormal {
			b.WriteString(fmt.Sprintf("- **%s** in rows %s\n", c.Column, joinInts(c.Rows)))
		}
		b.WriteString("\n")
	}

	b.WriteString("### Verdicts\n\n")
	b.WriteString("| Row | Column | Check | Status | Measured | Limit |\n")
	b.WriteString("|-----|--------|-------|--------|----------|-------|\n")
	for _, v := range r.Verdicts {
		b.WriteString(fmt.Sprintf("| %d | %s | %s | %s %s | %s | %s |\n",
			v.ExcelRow, escapeCell(v.Column), v.Check, statusIcon(v), v.Status,
			formatNumber(v.Measured), escapeCell(v.Limit)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("_%s_\n", models.Legend))

	return b.String()
}

// RenderHTML converts the markdown result into a standalone HTML page.
func RenderHTML(r *models.EvaluationReport) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(RenderMarkdown(r)), &body); err != nil {
		return nil, fmt.Errorf("rendering HTML: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(ReportName(r))))
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func joinInts(rows []int) string {
	parts := make([]string, len(rows))
	for i, n := range rows {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

package models

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Status is the verdict for one evaluated grid cell.
type Status string

const (
	StatusValid        Status = "VALID"
	StatusInvalid      Status = "INVALID"
	StatusAbnormal     Status = "ABNORMAL"
	StatusNotEvaluated Status = "NOT_EVALUATED"
)

// Result is the overall verdict for a grid.
type Result string

const (
	ResultPass Result = "PASS"
	ResultFail Result = "FAIL"
)

// ExcelRowOffset maps a 0-based data row index onto the row number shown in
// exported sheets, where row 1 is the header.
const ExcelRowOffset = 2

// CellVerdict records the outcome of one check against one grid cell.
type CellVerdict struct {
	// Row is the 0-based data row index.
	Row int `json:"row"`
	// ExcelRow is the sheet row number (Row + 2).
	ExcelRow int    `json:"excel_row"`
	Column   string `json:"column"`
	// Check names the rule that produced this verdict.
	Check  string `json:"check"`
	Status Status `json:"status"`
	// Abnormal is set for suspiciously high values. It is kept alongside an
	// INVALID status rather than replacing it.
	Abnormal bool    `json:"abnormal,omitempty"`
	Measured float64 `json:"measured"`
	// Limit is the literal limit that was applied, for audit.
	Limit string `json:"limit"`
}

// NewCellVerdict builds a verdict for the 0-based row index.
func NewCellVerdict(row int, column, check string, status Status, measured float64, limit string) CellVerdict {
	return CellVerdict{
		Row:      row,
		ExcelRow: row + ExcelRowOffset,
		Column:   column,
		Check:    check,
		Status:   status,
		Measured: measured,
		Limit:    limit,
	}
}

// Failed reports whether the cell counts against the overall result.
func (c CellVerdict) Failed() bool {
	return c.Status == StatusInvalid
}

// RatedOutputVoltage is the nominal AVR output voltage.
const RatedOutputVoltage = 230.0

// RatedContext holds the AVR reference values derived from the reference row.
type RatedContext struct {
	RatedOutputVoltage float64 `json:"rated_output_voltage"`
	RatedPowerW        float64 `json:"rated_power_w"`
	RatedLoadCurrentA  float64 `json:"rated_load_current_a"`
	RatedInputCurrentA float64 `json:"rated_input_current_a"`
}

// RatedPowerKW returns the rated power in kilowatts.
func (r RatedContext) RatedPowerKW() float64 {
	return r.RatedPowerW / 1000
}

// ModuleType is the detected SMR sub-type.
type ModuleType string

const (
	ModuleSMPS         ModuleType = "SMR_SMPS"
	ModuleTelecomRE    ModuleType = "SMR_Telecom_RE"
	ModuleTelecomNonRE ModuleType = "SMR_Telecom_Non-RE"
)

// Rated load currents per SMR family, in amperes.
const (
	RatedCurrentSMPS    = 20.0
	RatedCurrentTelecom = 25.0
)

// IsSMPS reports whether the module is the 110 V SMPS variant.
func (m ModuleType) IsSMPS() bool {
	return m == ModuleSMPS
}

// ModuleClassification is the SMR sub-type together with its rated current.
type ModuleClassification struct {
	Type          ModuleType `json:"type"`
	RatedCurrentA float64    `json:"rated_current_a"`
}

// EvaluationReport is the full outcome of one grid evaluation.
type EvaluationReport struct {
	Unit     Unit                  `json:"unit"`
	Serial   string                `json:"serial,omitempty"`
	Module   *ModuleClassification `json:"module,omitempty"`
	Rated    *RatedContext         `json:"rated,omitempty"`
	Verdicts []CellVerdict         `json:"verdicts"`
	Result   Result                `json:"result"`
	Failures []CellVerdict         `json:"failures"`
	Abnormal []CellVerdict         `json:"abnormal"`
}

// Passed reports whether the grid passed acceptance.
func (r *EvaluationReport) Passed() bool {
	return r.Result == ResultPass
}

// ColumnRows is an ordered "column → sheet rows" view used by exporters.
type ColumnRows struct {
	Column string
	Rows   []int
}

// InvalidByColumn groups failing cells by column, in first-seen order.
func (r *EvaluationReport) InvalidByColumn() []ColumnRows {
	return groupByColumn(r.Failures)
}

// AbnormalByColumn groups abnormal cells by column, in first-seen order.
func (r *EvaluationReport) AbnormalByColumn() []ColumnRows {
	return groupByColumn(r.Abnormal)
}

// CellStatus returns the most severe status recorded for the given row and
// column, and false when no check looked at that cell.
func (r *EvaluationReport) CellStatus(row int, column string) (Status, bool) {
	found := false
	best := StatusNotEvaluated
	for _, v := range r.Verdicts {
		if v.Row != row || v.Column != column {
			continue
		}
		found = true
		if severity(v.Status) > severity(best) {
			best = v.Status
		}
		if v.Abnormal && severity(StatusAbnormal) > severity(best) {
			best = StatusAbnormal
		}
	}
	return best, found
}

func severity(s Status) int {
	switch s {
	case StatusInvalid:
		return 3
	case StatusAbnormal:
		return 2
	case StatusValid:
		return 1
	default:
		return 0
	}
}

func groupByColumn(cells []CellVerdict) []ColumnRows {
	var out []ColumnRows
	index := map[string]int{}
	for _, c := range cells {
		i, ok := index[c.Column]
		if !ok {
			i = len(out)
			index[c.Column] = i
			out = append(out, ColumnRows{Column: c.Column})
		}
		if !slices.Contains(out[i].Rows, c.ExcelRow) {
			out[i].Rows = append(out[i].Rows, c.ExcelRow)
		}
	}
	for i := range out {
		slices.Sort(out[i].Rows)
	}
	return out
}

// Legend explains the cell colors used by exported sheets.
const Legend = "LEGEND: [RED: FAIL, YELLOW: PASS BUT ABNORMAL, GREEN: PASS]"

// Summary renders the multi-line bench summary:
//
//	Mode: SMR_Telecom_RE
//	Invalid V (out) in rows: 3, 7
//	Abnormal Efficiency in rows: 4
//	RESULT: FAIL
func (r *EvaluationReport) Summary() string {
	var lines []string
	if r.Module != nil {
		lines = append(lines, fmt.Sprintf("Mode: %s", r.Module.Type))
	}
	for _, c := range r.InvalidByColumn() {
		lines = append(lines, fmt.Sprintf("Invalid %s in rows: %s", c.Column, joinRows(c.Rows)))
	}
	for _, c := range r.AbnormalByColumn() {
		lines = append(lines, fmt.Sprintf("Abnormal %s in rows: %s", c.Column, joinRows(c.Rows)))
	}
	lines = append(lines, fmt.Sprintf("RESULT: %s", r.Result))
	lines = append(lines, Legend)
	return strings.Join(lines, "\n")
}

func joinRows(rows []int) string {
	parts := make([]string, len(rows))
	for i, n := range rows {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

package reporting

import (
	"testing"

	"github.com/spboyer/acceptbench/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestInterpretResult(t *testing.T) {
	assert.Equal(t, "Rejected (1 cell(s) outside limits)", InterpretResult(newTestReport()))
	assert.Equal(t, "Accepted", InterpretResult(newPassingAVRReport()))

	r := newPassingAVRReport()
	r.Abnormal = []models.CellVerdict{{}}
	assert.Equal(t, "Accepted, review 1 abnormal cell(s)", InterpretResult(r))
}

func TestInterpretModule(t *testing.T) {
	assert.Equal(t, "SMR_Telecom_RE, rated 25 A", InterpretModule(newTestReport()))
	assert.Equal(t, "rated 5000 W, load current 21.74 A, input current 25 A", InterpretModule(newPassingAVRReport()))
	assert.Empty(t, InterpretModule(&models.EvaluationReport{}))
}

func TestFormatSummaryReport(t *testing.T) {
	out := FormatSummaryReport(newTestReport())

	assert.Contains(t, out, "=== SMR-17-0042 (SMR) ===")
	assert.Contains(t, out, "Context: SMR_Telecom_RE, rated 25 A")
	assert.Contains(t, out, "Mode: SMR_Telecom_RE")
	assert.Contains(t, out, "Invalid Ripple (out) in rows: 5")
	assert.Contains(t, out, "Abnormal Efficiency in rows: 3")
	assert.Contains(t, out, "RESULT: FAIL")
	assert.Contains(t, out, models.Legend)
}

func TestFileStem(t *testing.T) {
	r := newTestReport()
	r.Serial = "lot 7: AVR?"
	assert.Equal(t, "lot_7__AVR_", fileStem(r))

	r.Serial = ""
	assert.Equal(t, "smr", fileStem(r))
}

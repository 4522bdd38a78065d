package utils

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/spboyer/acceptbench/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flaggedReport() *models.EvaluationReport {
	invalid := models.NewCellVerdict(3, models.ColRippleOut, "ripple", models.StatusInvalid, 412, "ripple <= 300 mV")
	abnormal := models.NewCellVerdict(1, models.ColEfficiency, "efficiency", models.StatusAbnormal, 97.1, ">= 85%; abnormal > 96%")
	abnormal.Abnormal = true
	valid := models.NewCellVerdict(2, models.ColVOut, "dc_output_voltage", models.StatusValid, 53.5, "44.4-66 V DC")
	return &models.EvaluationReport{Verdicts: []models.CellVerdict{valid, abnormal, invalid}}
}

func captureDebug(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	old := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(old)
	})

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})))
	return &buf
}

func TestVerdictsToSlogDebugDisabled(t *testing.T) {
	buf := captureDebug(t, slog.LevelInfo)

	VerdictsToSlog(flaggedReport())
	assert.Equal(t, 0, buf.Len())
}

func TestVerdictsToSlogDebugEnabled(t *testing.T) {
	buf := captureDebug(t, slog.LevelDebug)

	VerdictsToSlog(flaggedReport())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var abnormal map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &abnormal))
	assert.Equal(t, "Cell flagged", abnormal["msg"])
	assert.Equal(t, "Efficiency", abnormal["column"])
	assert.Equal(t, float64(3), abnormal["row"])
	assert.Equal(t, true, abnormal["abnormal"])

	var invalid map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &invalid))
	assert.Equal(t, "INVALID", invalid["status"])
	assert.Equal(t, "ripple <= 300 mV", invalid["limit"])
	assert.Equal(t, 412.0, invalid["measured"])
	assert.NotContains(t, invalid, "abnormal")
}

func TestAddIf(t *testing.T) {
	attrs := addIf([]any{"a", 1}, "check", "")
	assert.Equal(t, []any{"a", 1}, attrs)

	attrs = addIf(attrs, "check", "ripple")
	assert.Equal(t, []any{"a", 1, "check", "ripple"}, attrs)
}

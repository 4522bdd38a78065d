package validation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spboyer/acceptbench/schemas"
	"github.com/stretchr/testify/require"
)

const validAVRGridYAML = `unit: avr
serial: AVR-2291
rows:
  - {"Frequency": 50, "V (in)": 160, "I (in)": 30.1, "kW (in)": 4.9, "V (out)": 229.1, "I (out)": 19.8, "kW (out)": -4.5, "VTHD (out)": 2.1, "Efficiency": 91.8, "Load": "--", "Line": "--"}
  - {"Frequency": 50, "V (in)": 230, "I (in)": 0.9, "kW (in)": 0.12, "V (out)": 230.2, "I (out)": 0, "kW (out)": 0, "VTHD (out)": 1.2, "Efficiency": 0, "Load": "0.3", "Line": -0.4}
`

const validSMRGridJSON = `{
  "unit": "smr",
  "rows": [
    {"V (in)": 230, "V (out)": 53.5, "I (out)": 25, "PF (in)": -0.96, "Efficiency": 90.2, "Ithd % (in)": 5.5, "Vthd % (in)": 2.9, "Ripple (out)": 110}
  ]
}`

const invalidAVRGridYAML = `unit: avr
rows:
  - {"V (in)": 230, "I (in)": "high", "kW (in)": 4.9, "V (out)": 229.1, "I (out)": 19.8, "kW (out)": -4.5, "VTHD (out)": 2.1, "Efficiency": 91.8, "Load": "n/a"}
`

func TestValidateGridBytes_Valid(t *testing.T) {
	require.Empty(t, ValidateGridBytes([]byte(validAVRGridYAML)))
	require.Empty(t, ValidateGridBytes([]byte(validSMRGridJSON)))
}

func TestValidateGridBytes_Invalid(t *testing.T) {
	errs := ValidateGridBytes([]byte(invalidAVRGridYAML))
	require.NotEmpty(t, errs)

	joined := strings.Join(errs, "\n")
	require.Contains(t, joined, "Line")
	require.Contains(t, joined, "/rows/0/I (in)")
	require.Contains(t, joined, "/rows/0/Load")
}

func TestGridSchema_PowerFactorSign(t *testing.T) {
	var doc struct {
		Defs map[string]struct {
			Description string `json:"description"`
		} `json:"$defs"`
	}
	require.NoError(t, json.Unmarshal([]byte(schemas.GridSchemaJSON), &doc))
	require.Contains(t, doc.Defs["powerFactor"].Description, "negative is lagging")

	bad := strings.Replace(validSMRGridJSON, `"PF (in)": -0.96`, `"PF (in)": "lag"`, 1)
	errs := ValidateGridBytes([]byte(bad))
	require.NotEmpty(t, errs)
	require.Contains(t, strings.Join(errs, "\n"), "PF (in)")
}

func TestValidateGridBytes_UnknownUnit(t *testing.T) {
	errs := ValidateGridBytes([]byte("unit: ups\nrows: [{}]\n"))
	require.NotEmpty(t, errs)
	require.Contains(t, strings.Join(errs, "\n"), "/unit")
}

func TestValidateGridBytes_ParseError(t *testing.T) {
	errs := ValidateGridBytes([]byte("unit: [avr\n"))
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "YAML parse error")
}

func TestValidateConfigBytes(t *testing.T) {
	require.Empty(t, ValidateConfigBytes([]byte("defaults:\n  unit: smr\n  workers: 4\n  formats: [text, junit]\n")))
	require.Empty(t, ValidateConfigBytes(nil))

	errs := ValidateConfigBytes([]byte("defaults:\n  workers: 0\n  thresholds:\n    vthd: 9\n"))
	joined := strings.Join(errs, "\n")
	require.Contains(t, joined, "workers")
	require.Contains(t, joined, "thresholds")
}

func TestValidateGridFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validAVRGridYAML), 0644))

	errs, err := ValidateGridFile(path)
	require.NoError(t, err)
	require.Empty(t, errs)

	_, err = ValidateGridFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestValidateGridDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(validAVRGridYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.json"), []byte(validSMRGridJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yml"), []byte(invalidAVRGridYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bench.csv"), []byte("not,checked\n"), 0644))

	gridErrs, err := ValidateGridDir(dir)
	require.NoError(t, err)
	require.Len(t, gridErrs, 1)
	require.NotEmpty(t, gridErrs["bad.yml"])
}

func TestIsStructuredGrid(t *testing.T) {
	require.True(t, IsStructuredGrid("a/b/grid.YAML"))
	require.True(t, IsStructuredGrid("grid.json"))
	require.False(t, IsStructuredGrid("grid.csv"))
}

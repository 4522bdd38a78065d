package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/spboyer/acceptbench/internal/models"
	"github.com/stretchr/testify/require"
)

const avrCSV = `Frequency,V (in),I (in),kW (in),V (out),I (out),kW (out),VTHD (out),Efficiency,Load,Line
50,160,30.1,4.90,229.1,19.8,-4.50,2.1,91.8,--,--
50,230,0.9,0.12,230.2,0,0,1.2,0,0.3,-0.4
50,230,25.0,5.40,230.0,21.7,-5.00,1.9,92.6,0.2,0.1
50,270,19.5,5.35,230.4,21.7,-4.98,1.8,93.1,0.5,0.2
50,230,12.1,2.70,229.9,10.9,-2.50,1.7,92.0,--,0.3
50,200,26.9,5.38,229.7,21.6,-4.97,2.0,92.4,0.4,--
`

const smrCSV = `V (in),I (in),P (in),PF (in),Vthd % (in),Ithd % (in),V (out),I (out),P (out),Ripple (out),Efficiency
165,8.9,1460,0.99,2.5,6.1,53.5,25,1336,110,91.5
230,6.5,1485,-0.96,2.8,5.2,53.5,25,1337,100,90.0
230,5.1,1170,0.98,2.7,5.9,53.5,20,1070,90,91.4
230,3.3,760,0.97,2.9,7.9,53.5,13,695,80,91.4
230,1.4,300,0.93,3.0,14.2,53.5,5,267,70,89.0
230,0.3,40,0.91,3.1,20.5,53.5,0,0,60,0
`

const smrYAML = `unit: smr
serial: SMR-17-0042
rows:
  - {"V (in)": 165, "V (out)": 53.5, "I (out)": 25, "PF (in)": 0.99, "Efficiency": 91.5, "Ithd % (in)": 6.1, "Vthd % (in)": 2.5, "Ripple (out)": 110}
  - {"V (in)": 230, "V (out)": 53.5, "I (out)": 25, "PF (in)": -0.96, "Efficiency": 90, "Ithd % (in)": 5.2, "Vthd % (in)": 2.8, "Ripple (out)": 100}
  - {"V (in)": 230, "V (out)": 53.5, "I (out)": 20, "PF (in)": 0.98, "Efficiency": 91.4, "Ithd % (in)": 5.9, "Vthd % (in)": 2.7, "Ripple (out)": 90}
  - {"V (in)": 230, "V (out)": 53.5, "I (out)": 13, "PF (in)": 0.97, "Efficiency": 91.4, "Ithd % (in)": 7.9, "Vthd % (in)": 2.9, "Ripple (out)": 80}
  - {"V (in)": 230, "V (out)": 53.5, "I (out)": 5, "PF (in)": 0.93, "Efficiency": 89, "Ithd % (in)": 14.2, "Vthd % (in)": 3.0, "Ripple (out)": 70}
  - {"V (in)": 230, "V (out)": 53.5, "I (out)": 0, "PF (in)": 0.91, "Efficiency": 0, "Ithd % (in)": 20.5, "Vthd % (in)": 3.1, "Ripple (out)": 60}
`

func TestLoadGrid_AVRCSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "AVR-2291.csv", avrCSV)

	grid, err := LoadGrid(path, "")
	require.NoError(t, err)
	require.Equal(t, models.UnitAVR, grid.Unit)
	require.Equal(t, "AVR-2291", grid.Serial)
	require.Len(t, grid.AVR, models.RowCount)

	require.Equal(t, 50.0, grid.AVR[0].Frequency)
	require.Equal(t, models.NoReg(), grid.AVR[0].Load)
	require.Equal(t, models.Reg(-0.4), grid.AVR[1].Line)
	require.Equal(t, -5.0, grid.AVR[2].KWOut)
	require.Equal(t, 25.0, grid.AVR[2].IIn)
	require.Equal(t, 0.0, grid.AVR[1].IOut)
}

func TestLoadGrid_SMRCSVWithExplicitUnit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bench.csv", smrCSV)

	grid, err := LoadGrid(path, models.UnitSMR)
	require.NoError(t, err)
	require.Equal(t, models.UnitSMR, grid.Unit)
	require.Len(t, grid.SMR, models.RowCount)
	require.Equal(t, -0.96, grid.SMR[1].PFIn)
	require.Equal(t, 1460.0, grid.SMR[0].PIn)
}

func TestLoadGrid_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "grid.yaml", smrYAML)

	grid, err := LoadGrid(path, "")
	require.NoError(t, err)
	require.Equal(t, models.UnitSMR, grid.Unit)
	require.Equal(t, "SMR-17-0042", grid.Serial)
	require.Equal(t, 25.0, grid.SMR[0].IOut)

	_, err = LoadGrid(path, models.UnitAVR)
	require.ErrorIs(t, err, ErrUnitMismatch)
}

func TestLoadGrid_SchemaError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "grid.json", `{"unit": "smr", "rows": [{"V (in)": "high"}]}`)

	_, err := LoadGrid(path, "")
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	require.NotEmpty(t, se.Problems)
	require.Contains(t, err.Error(), "grid schema")
}

func TestLoadGrid_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("unknown csv unit", func(t *testing.T) {
		path := writeFile(t, dir, "mystery.csv", "V (in),V (out)\n230,230\n")
		_, err := LoadGrid(path, "")
		require.ErrorIs(t, err, ErrUnitUnknown)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, dir, "grid.xlsx", "")
		_, err := LoadGrid(path, models.UnitAVR)
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing required cell", func(t *testing.T) {
		broken := strings.Replace(avrCSV, "50,230,25.0,5.40,230.0,21.7,-5.00,1.9", "50,230,25.0,5.40,,21.7,-5.00,1.9", 1)
		path := writeFile(t, dir, "missing.csv", broken)
		_, err := LoadGrid(path, "")
		require.ErrorIs(t, err, models.ErrMissingField)
		require.Contains(t, err.Error(), "row 3")
		require.Contains(t, err.Error(), `"V (out)"`)
	})

	t.Run("non-numeric cell", func(t *testing.T) {
		broken := strings.Replace(avrCSV, "229.1", "2291V", 1)
		path := writeFile(t, dir, "nonnumeric.csv", broken)
		_, err := LoadGrid(path, "")
		require.ErrorIs(t, err, models.ErrNonNumeric)
	})
}

func TestDecodeRows(t *testing.T) {
	t.Run("optional columns may be blank", func(t *testing.T) {
		grid, err := DecodeRows(models.UnitSMR, []map[string]any{{
			"V (in)": 230, "V (out)": "53.5", "I (out)": 25.0, "PF (in)": "-0.96",
			"Efficiency": "90%", "Ithd % (in)": 5, "Vthd % (in)": 2.9, "Ripple (out)": 100,
			"P (in)": "", "Operator": "JS",
		}})
		require.NoError(t, err)
		require.Equal(t, 90.0, grid.SMR[0].Efficiency)
		require.Equal(t, 0.0, grid.SMR[0].PIn)
		require.Equal(t, 53.5, grid.SMR[0].VOut)
	})

	t.Run("regulation accepts numbers and the marker", func(t *testing.T) {
		row := map[string]any{
			"V (in)": 230, "I (in)": 1, "kW (in)": 1, "V (out)": 230, "I (out)": 0,
			"kW (out)": 0, "VTHD (out)": 1, "Efficiency": 0, "Load": 0, "Line": "--",
		}
		grid, err := DecodeRows(models.UnitAVR, []map[string]any{row})
		require.NoError(t, err)
		require.Equal(t, models.Reg(0), grid.AVR[0].Load)
		require.Equal(t, models.NoReg(), grid.AVR[0].Line)
	})

	t.Run("marker is not a number", func(t *testing.T) {
		row := map[string]any{
			"V (in)": "--", "V (out)": 53.5, "I (out)": 25, "PF (in)": 0.99,
			"Efficiency": 90, "Ithd % (in)": 5, "Vthd % (in)": 3, "Ripple (out)": 100,
		}
		_, err := DecodeRows(models.UnitSMR, []map[string]any{row})
		require.ErrorIs(t, err, models.ErrNonNumeric)
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, err := DecodeRows(models.Unit("ups"), nil)
		require.Error(t, err)
	})
}

func TestDetectUnit(t *testing.T) {
	u, ok := DetectUnit([]Row{{models.ColLoad: "", models.ColLine: ""}})
	require.True(t, ok)
	require.Equal(t, models.UnitAVR, u)

	u, ok = DetectUnit([]Row{{models.ColPFIn: "", models.ColRippleOut: ""}})
	require.True(t, ok)
	require.Equal(t, models.UnitSMR, u)

	_, ok = DetectUnit(nil)
	require.False(t, ok)
}

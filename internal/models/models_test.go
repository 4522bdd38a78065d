package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit(" AVR ")
	require.NoError(t, err)
	require.Equal(t, UnitAVR, u)

	u, err = ParseUnit("smr")
	require.NoError(t, err)
	require.Equal(t, UnitSMR, u)

	_, err = ParseUnit("ups")
	require.Error(t, err)
}

func TestParseRegulation(t *testing.T) {
	tests := []struct {
		in      string
		want    Regulation
		wantErr error
	}{
		{"--", NoReg(), nil},
		{" -- ", NoReg(), nil},
		{"0", Reg(0), nil},
		{"-0.8", Reg(-0.8), nil},
		{"1.5%", Reg(1.5), nil},
		{"", Regulation{}, ErrMissingField},
		{"n/a", Regulation{}, ErrNonNumeric},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRegulation(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRegulation_ZeroIsNotSentinel(t *testing.T) {
	require.NotEqual(t, NoReg(), Reg(0))
	require.Equal(t, "--", NoReg().String())
	require.Equal(t, "0", Reg(0).String())

	b, err := json.Marshal(AVRRow{Load: NoReg(), Line: Reg(-0.5)})
	require.NoError(t, err)
	require.Contains(t, string(b), `"load":"--"`)
	require.Contains(t, string(b), `"line":"-0.5"`)
}

func TestCheckRowCount(t *testing.T) {
	require.NoError(t, CheckRowCount(RowCount))
	err := CheckRowCount(5)
	require.ErrorIs(t, err, ErrRowCount)
	require.Contains(t, err.Error(), "got 5")
}

func TestGrid_Len(t *testing.T) {
	require.Equal(t, 2, Grid{Unit: UnitAVR, AVR: make([]AVRRow, 2)}.Len())
	require.Equal(t, 3, Grid{Unit: UnitSMR, SMR: make([]SMRRow, 3)}.Len())
}

func TestNewCellVerdict_ExcelRow(t *testing.T) {
	v := NewCellVerdict(0, ColVOut, "output_voltage", StatusInvalid, 233, "")
	require.Equal(t, 2, v.ExcelRow)
	require.True(t, v.Failed())
}

func sampleReport() *EvaluationReport {
	fail := func(row int, col string) CellVerdict {
		return NewCellVerdict(row, col, "x", StatusInvalid, 0, "")
	}
	abnormal := NewCellVerdict(1, ColEfficiency, "efficiency", StatusAbnormal, 97, "")
	abnormal.Abnormal = true

	failures := []CellVerdict{fail(4, ColVOut), fail(1, ColVOut), fail(4, ColVOut), fail(2, ColRippleOut)}
	return &EvaluationReport{
		Unit:     UnitSMR,
		Module:   &ModuleClassification{Type: ModuleTelecomRE, RatedCurrentA: RatedCurrentTelecom},
		Verdicts: append(append([]CellVerdict{}, failures...), abnormal),
		Result:   ResultFail,
		Failures: failures,
		Abnormal: []CellVerdict{abnormal},
	}
}

func TestEvaluationReport_InvalidByColumn(t *testing.T) {
	got := sampleReport().InvalidByColumn()
	require.Equal(t, []ColumnRows{
		{Column: ColVOut, Rows: []int{3, 6}},
		{Column: ColRippleOut, Rows: []int{4}},
	}, got)
}

func TestEvaluationReport_Summary(t *testing.T) {
	want := "Mode: SMR_Telecom_RE\n" +
		"Invalid V (out) in rows: 3, 6\n" +
		"Invalid Ripple (out) in rows: 4\n" +
		"Abnormal Efficiency in rows: 3\n" +
		"RESULT: FAIL\n" +
		Legend
	require.Equal(t, want, sampleReport().Summary())

	pass := &EvaluationReport{Unit: UnitAVR, Result: ResultPass}
	require.Equal(t, "RESULT: PASS\n"+Legend, pass.Summary())
}

func TestEvaluationReport_CellStatus(t *testing.T) {
	r := sampleReport()

	s, ok := r.CellStatus(4, ColVOut)
	require.True(t, ok)
	require.Equal(t, StatusInvalid, s)

	s, ok = r.CellStatus(1, ColEfficiency)
	require.True(t, ok)
	require.Equal(t, StatusAbnormal, s)

	_, ok = r.CellStatus(0, ColPFIn)
	require.False(t, ok)
}

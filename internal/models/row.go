package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RowCount is the number of measurement rows every acceptance grid must carry.
const RowCount = 6

// NotApplicable is the grid marker for a regulation cell that has no value.
const NotApplicable = "--"

var (
	// ErrRowCount is returned when a grid does not have exactly [RowCount] rows.
	ErrRowCount = errors.New("grid: expected exactly 6 measurement rows")

	// ErrMissingField is returned when a required numeric column is absent or empty.
	ErrMissingField = errors.New("grid: missing required field")

	// ErrNonNumeric is returned when a required column holds a non-numeric value.
	ErrNonNumeric = errors.New("grid: non-numeric value")
)

// Unit identifies the family of the device under test.
type Unit string

const (
	UnitAVR Unit = "avr"
	UnitSMR Unit = "smr"
)

// ParseUnit accepts the unit names used on the command line and in grid files.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "avr":
		return UnitAVR, nil
	case "smr":
		return UnitSMR, nil
	default:
		return "", fmt.Errorf("'%s' is not a valid unit (expected avr or smr)", s)
	}
}

// Column labels as they appear in the bench grid and in exported reports.
const (
	ColFrequency  = "Frequency"
	ColVIn        = "V (in)"
	ColIIn        = "I (in)"
	ColKWIn       = "kW (in)"
	ColVOut       = "V (out)"
	ColIOut       = "I (out)"
	ColKWOut      = "kW (out)"
	ColVTHDOut    = "VTHD (out)"
	ColEfficiency = "Efficiency"
	ColLoad       = "Load"
	ColLine       = "Line"

	ColPIn       = "P (in)"
	ColPFIn      = "PF (in)"
	ColVthdIn    = "Vthd % (in)"
	ColIthdIn    = "Ithd % (in)"
	ColPOut      = "P (out)"
	ColRippleOut = "Ripple (out)"
)

// Regulation is a load or line regulation percentage. A cell holding the
// [NotApplicable] marker decodes to Applicable == false, which is not the same
// thing as a measured 0%.
type Regulation struct {
	Value      float64
	Applicable bool
}

// Reg returns an applicable regulation value.
func Reg(v float64) Regulation {
	return Regulation{Value: v, Applicable: true}
}

// NoReg returns the not-applicable regulation marker.
func NoReg() Regulation {
	return Regulation{}
}

// ParseRegulation parses a regulation cell, honoring the "--" marker.
func ParseRegulation(s string) (Regulation, error) {
	s = strings.TrimSpace(s)
	if s == NotApplicable {
		return NoReg(), nil
	}
	if s == "" {
		return Regulation{}, ErrMissingField
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Regulation{}, fmt.Errorf("%w: %q", ErrNonNumeric, s)
	}
	return Reg(v), nil
}

func (r Regulation) String() string {
	if !r.Applicable {
		return NotApplicable
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// MarshalText implements [encoding.TextMarshaler] so reports keep the "--" marker.
func (r Regulation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (r *Regulation) UnmarshalText(b []byte) error {
	v, err := ParseRegulation(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// AVRRow is one normalized measurement row of an AVR acceptance grid.
type AVRRow struct {
	Frequency  float64    `mapstructure:"Frequency" json:"frequency"`
	VIn        float64    `mapstructure:"V (in)" json:"v_in"`
	IIn        float64    `mapstructure:"I (in)" json:"i_in"`
	KWIn       float64    `mapstructure:"kW (in)" json:"kw_in"`
	VOut       float64    `mapstructure:"V (out)" json:"v_out"`
	IOut       float64    `mapstructure:"I (out)" json:"i_out"`
	KWOut      float64    `mapstructure:"kW (out)" json:"kw_out"`
	VTHDOut    float64    `mapstructure:"VTHD (out)" json:"vthd_out"`
	Efficiency float64    `mapstructure:"Efficiency" json:"efficiency"`
	Load       Regulation `mapstructure:"Load" json:"load"`
	Line       Regulation `mapstructure:"Line" json:"line"`
}

// SMRRow is one normalized measurement row of an SMR acceptance grid.
//
// PFIn follows the meter's sign convention: positive is leading, negative
// is lagging.
type SMRRow struct {
	VIn        float64 `mapstructure:"V (in)" json:"v_in"`
	IIn        float64 `mapstructure:"I (in)" json:"i_in"`
	PIn        float64 `mapstructure:"P (in)" json:"p_in"`
	PFIn       float64 `mapstructure:"PF (in)" json:"pf_in"`
	VthdIn     float64 `mapstructure:"Vthd % (in)" json:"vthd_in"`
	IthdIn     float64 `mapstructure:"Ithd % (in)" json:"ithd_in"`
	VOut       float64 `mapstructure:"V (out)" json:"v_out"`
	IOut       float64 `mapstructure:"I (out)" json:"i_out"`
	POut       float64 `mapstructure:"P (out)" json:"p_out"`
	RippleOut  float64 `mapstructure:"Ripple (out)" json:"ripple_out"`
	Efficiency float64 `mapstructure:"Efficiency" json:"efficiency"`
}

// PFLeading reports whether the power factor reading is leading.
func (r SMRRow) PFLeading() bool {
	return r.PFIn >= 0
}

// AVRRequiredColumns lists the AVR columns the rule set reads. Frequency is
// recorded on the bench but never evaluated, so it is optional.
var AVRRequiredColumns = []string{
	ColVIn, ColIIn, ColKWIn, ColVOut, ColIOut, ColKWOut, ColVTHDOut, ColEfficiency, ColLoad, ColLine,
}

// SMRRequiredColumns lists the SMR columns the rule set reads.
var SMRRequiredColumns = []string{
	ColVIn, ColVOut, ColIOut, ColPFIn, ColEfficiency, ColIthdIn, ColVthdIn, ColRippleOut,
}

// AVRGridColumns is the full bench column order for AVR grids.
var AVRGridColumns = []string{
	ColFrequency, ColVIn, ColIIn, ColKWIn, ColVOut, ColIOut, ColKWOut, ColVTHDOut, ColEfficiency, ColLoad, ColLine,
}

// SMRGridColumns is the full bench column order for SMR grids.
var SMRGridColumns = []string{
	ColVIn, ColIIn, ColPIn, ColPFIn, ColVthdIn, ColIthdIn, ColVOut, ColIOut, ColPOut, ColRippleOut, ColEfficiency,
}

// Grid is a decoded acceptance grid for either unit family. Exactly one of
// AVR or SMR is populated, matching Unit.
type Grid struct {
	Unit   Unit     `json:"unit"`
	Serial string   `json:"serial,omitempty"`
	AVR    []AVRRow `json:"avr,omitempty"`
	SMR    []SMRRow `json:"smr,omitempty"`
}

// Len returns the number of rows for the grid's unit.
func (g Grid) Len() int {
	if g.Unit == UnitSMR {
		return len(g.SMR)
	}
	return len(g.AVR)
}

// CheckRowCount returns [ErrRowCount] wrapped with the observed count.
func CheckRowCount(n int) error {
	if n != RowCount {
		return fmt.Errorf("%w, got %d", ErrRowCount, n)
	}
	return nil
}

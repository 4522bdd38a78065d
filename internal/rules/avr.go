package rules

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/spboyer/acceptbench/internal/models"
)

// AVR acceptance limits for unidirectional regulators.
const (
	AVRVTHDLimit          = 8.0  // %
	AVREfficiencyMin      = 85.0 // %, at full load
	AVREfficiencyAbnormal = 96.0 // %
	AVRInputVoltTolPct    = 5.0
	AVROutputVoltTolPct   = 1.0
	AVRLoadCurrentTolPct  = 10.0
	AVRSafetyVoltMin      = 220.8 // V, 230 V -4%
	AVRSafetyVoltMax      = 239.2 // V, 230 V +4%
	AVRNominalInputVolt   = 230.0
	AVRLowInputVolt       = 160.0
	AVRLoadRegLimit       = 1.0 // %
	AVRLoadRegLowLimit    = 4.0 // %, when V(in) is near 160 V
	AVRLineRegLimit       = 1.0 // %
	AVRNoLoadPowerFrac    = 0.10
	AVRNoLoadCurrentFrac  = 0.25
)

// AVR check names, in execution order.
const (
	CheckOutputVTHD    = "output_vthd"
	CheckEfficiency    = "efficiency"
	CheckOutputVoltage = "output_voltage"
	CheckNoLoadPower   = "no_load_power"
	CheckNoLoadCurrent = "no_load_current"
	CheckLoadReg       = "load_regulation"
	CheckLineReg       = "line_regulation"
)

// DeriveRatedContext computes the AVR rated values from the reference row.
func DeriveRatedContext(rows []models.AVRRow) (models.RatedContext, error) {
	if len(rows) <= ReferenceRowIndex {
		return models.RatedContext{}, fmt.Errorf("%w, got %d", models.ErrRowCount, len(rows))
	}
	ref := rows[ReferenceRowIndex]
	powerW := math.Abs(ref.KWOut) * 1000
	return models.RatedContext{
		RatedOutputVoltage: models.RatedOutputVoltage,
		RatedPowerW:        powerW,
		RatedLoadCurrentA:  round2(powerW / models.RatedOutputVoltage),
		RatedInputCurrentA: ref.IIn,
	}, nil
}

// avrRuleSet evaluates AVR grids.
type avrRuleSet struct{}

// NewAVRRuleSet creates the AVR rule set.
func NewAVRRuleSet() RuleSet { return avrRuleSet{} }

func (avrRuleSet) Unit() models.Unit { return models.UnitAVR }

func (avrRuleSet) Checks() []string {
	return []string{
		CheckOutputVTHD,
		CheckEfficiency,
		CheckOutputVoltage,
		CheckNoLoadPower,
		CheckNoLoadCurrent,
		CheckLoadReg,
		CheckLineReg,
	}
}

func (rs avrRuleSet) Evaluate(grid models.Grid) (*Outcome, error) {
	if grid.Unit != models.UnitAVR {
		return nil, fmt.Errorf("%w: %s grid given to avr rules", ErrWrongUnit, grid.Unit)
	}
	if err := models.CheckRowCount(len(grid.AVR)); err != nil {
		return nil, err
	}

	rated, err := DeriveRatedContext(grid.AVR)
	if err != nil {
		return nil, err
	}
	slog.Debug("AVR rated context derived",
		"ratedPowerW", rated.RatedPowerW,
		"ratedLoadCurrentA", rated.RatedLoadCurrentA,
		"ratedInputCurrentA", rated.RatedInputCurrentA)

	ac := avrContext{rows: grid.AVR, rated: rated}

	var verdicts []models.CellVerdict
	verdicts = append(verdicts, ac.checkOutputVTHD()...)
	verdicts = append(verdicts, ac.checkEfficiency()...)
	verdicts = append(verdicts, ac.checkOutputVoltage()...)
	verdicts = append(verdicts, ac.checkNoLoad()...)
	verdicts = append(verdicts, ac.checkRegulation()...)

	return &Outcome{Rated: &rated, Verdicts: verdicts}, nil
}

// avrContext is the read-only view every AVR check works from.
type avrContext struct {
	rows  []models.AVRRow
	rated models.RatedContext
}

func (ac avrContext) isFullLoad(iOut float64) bool {
	rated := ac.rated.RatedLoadCurrentA
	return math.Abs(iOut-rated) <= AVRLoadCurrentTolPct/100*rated
}

func (ac avrContext) checkOutputVTHD() []models.CellVerdict {
	limit := fmt.Sprintf("VTHD < %s%%", num(AVRVTHDLimit))
	out := make([]models.CellVerdict, 0, len(ac.rows))
	for i, r := range ac.rows {
		out = append(out, models.NewCellVerdict(i, models.ColVTHDOut, CheckOutputVTHD,
			statusOf(r.VTHDOut >= AVRVTHDLimit), r.VTHDOut, limit))
	}
	return out
}

func (ac avrContext) checkEfficiency() []models.CellVerdict {
	out := make([]models.CellVerdict, 0, len(ac.rows))
	for i, r := range ac.rows {
		fullLoad := ac.isFullLoad(r.IOut)
		invalid := fullLoad && r.Efficiency < AVREfficiencyMin
		abnormal := r.Efficiency > AVREfficiencyAbnormal

		limit := fmt.Sprintf("abnormal > %s%%", num(AVREfficiencyAbnormal))
		if fullLoad {
			limit = fmt.Sprintf(">= %s%% at full load (%s A ±%s%%); %s",
				num(AVREfficiencyMin), num(ac.rated.RatedLoadCurrentA), num(AVRLoadCurrentTolPct), limit)
		}

		v := models.NewCellVerdict(i, models.ColEfficiency, CheckEfficiency, statusOf(invalid), r.Efficiency, limit)
		v.Abnormal = abnormal
		if abnormal && !invalid {
			v.Status = models.StatusAbnormal
		}
		out = append(out, v)
	}
	return out
}

func (ac avrContext) checkOutputVoltage() []models.CellVerdict {
	rated := ac.rated.RatedOutputVoltage
	safeLo, safeHi := AVRSafetyVoltMin, AVRSafetyVoltMax
	tightLo := rated * (1 - AVROutputVoltTolPct/100)
	tightHi := rated * (1 + AVROutputVoltTolPct/100)
	tight := fmt.Sprintf("%s-%s V", num(tightLo), num(tightHi))

	out := make([]models.CellVerdict, 0, len(ac.rows))
	for i, r := range ac.rows {
		limits := []string{fmt.Sprintf("%s-%s V", num(safeLo), num(safeHi))}
		invalid := r.VOut < safeLo || r.VOut > safeHi

		inRegulation := withinPercent(r.VOut, rated, AVROutputVoltTolPct)
		if withinPercent(r.VIn, AVRNominalInputVolt, AVRInputVoltTolPct) {
			limits = append(limits, tight+" at nominal input")
			invalid = invalid || !inRegulation
		}
		if ac.isFullLoad(r.IOut) {
			limits = append(limits, tight+" at full load")
			invalid = invalid || !inRegulation
		}

		out = append(out, models.NewCellVerdict(i, models.ColVOut, CheckOutputVoltage,
			statusOf(invalid), r.VOut, strings.Join(limits, "; ")))
	}
	return out
}

// checkNoLoad covers no-load input power and input current. The input current
// verdict is filed under the I (out) column, which is where the bench sheets
// have always shown it.
func (ac avrContext) checkNoLoad() []models.CellVerdict {
	powerLimit := AVRNoLoadPowerFrac * ac.rated.RatedPowerKW()
	currentLimit := AVRNoLoadCurrentFrac * ac.rated.RatedInputCurrentA
	powerDesc := fmt.Sprintf("kW(in) <= %s kW at no load", num(powerLimit))
	currentDesc := fmt.Sprintf("I(in) <= %s A at no load", num(currentLimit))

	power := make([]models.CellVerdict, 0, len(ac.rows))
	current := make([]models.CellVerdict, 0, len(ac.rows))
	for i, r := range ac.rows {
		if r.IOut != 0 {
			power = append(power, models.NewCellVerdict(i, models.ColKWIn, CheckNoLoadPower,
				models.StatusNotEvaluated, r.KWIn, powerDesc))
			current = append(current, models.NewCellVerdict(i, models.ColIOut, CheckNoLoadCurrent,
				models.StatusNotEvaluated, r.IIn, currentDesc))
			continue
		}
		power = append(power, models.NewCellVerdict(i, models.ColKWIn, CheckNoLoadPower,
			statusOf(r.KWIn > powerLimit), r.KWIn, powerDesc))
		current = append(current, models.NewCellVerdict(i, models.ColIOut, CheckNoLoadCurrent,
			statusOf(r.IIn > currentLimit), r.IIn, currentDesc))
	}
	return append(power, current...)
}

func (ac avrContext) checkRegulation() []models.CellVerdict {
	load := make([]models.CellVerdict, 0, len(ac.rows))
	line := make([]models.CellVerdict, 0, len(ac.rows))
	lineDesc := fmt.Sprintf("|Line| <= %s%%", num(AVRLineRegLimit))

	for i, r := range ac.rows {
		limit := AVRLoadRegLimit
		if withinPercent(r.VIn, AVRLowInputVolt, AVRInputVoltTolPct) {
			limit = AVRLoadRegLowLimit
		}
		loadDesc := fmt.Sprintf("|Load| <= %s%%", num(limit))

		if r.Load.Applicable {
			load = append(load, models.NewCellVerdict(i, models.ColLoad, CheckLoadReg,
				statusOf(math.Abs(r.Load.Value) > limit), r.Load.Value, loadDesc))
		} else {
			load = append(load, models.NewCellVerdict(i, models.ColLoad, CheckLoadReg,
				models.StatusNotEvaluated, 0, loadDesc))
		}

		if r.Line.Applicable {
			line = append(line, models.NewCellVerdict(i, models.ColLine, CheckLineReg,
				statusOf(math.Abs(r.Line.Value) > AVRLineRegLimit), r.Line.Value, lineDesc))
		} else {
			line = append(line, models.NewCellVerdict(i, models.ColLine, CheckLineReg,
				models.StatusNotEvaluated, 0, lineDesc))
		}
	}
	return append(load, line...)
}

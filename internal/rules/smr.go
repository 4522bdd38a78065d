package rules

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spboyer/acceptbench/internal/models"
)

// Limits shared by every SMR type.
const (
	SMRNominalInputVolt    = 230.0
	SMRInputVoltTolPct     = 5.0
	SMRFullLoadCurrentTolA = 1.0
	SMRIthdLimit           = 10.0  // %
	SMRIthdMinLoadFrac     = 0.50  // of rated current
	SMRRippleLimitMV       = 300.0 // mV peak to peak
	SMREfficiencyAbnormal  = 96.0  // %
)

// SMPS (110 V) limits.
const (
	SMPSPFNominal         = 0.95
	SMPSPFGeneral         = 0.90
	SMPSEfficiencyNominal = 90.0
	SMPSEfficiencyGeneral = 85.0
	SMPSVthdLimit         = 8.0
	SMPSVOutMin           = 101.09
	SMPSVOutMax           = 138.16
)

// Telecom (48 V, RE and Non-RE) limits.
const (
	TelecomPFLeadNominal     = 0.98
	TelecomPFLagNominal      = 0.95
	TelecomPFGeneral         = 0.90
	TelecomHighLoadFrac      = 0.75
	TelecomEfficiencyNominal = 85.0
	TelecomEfficiencyGeneral = 80.0
	TelecomVthdLimit         = 10.0
	TelecomVOutMin           = 44.4
	TelecomVOutMax           = 66.0
)

// SMR check names, in execution order.
const (
	CheckPowerFactor   = "power_factor"
	CheckSMREfficiency = "efficiency"
	CheckCurrentTHD    = "current_thd"
	CheckVoltageTHD    = "voltage_thd"
	CheckDCOutputVolt  = "dc_output_voltage"
	CheckRipple        = "ripple"
)

// smrRuleSet evaluates SMR grids.
type smrRuleSet struct{}

// NewSMRRuleSet creates the SMR rule set.
func NewSMRRuleSet() RuleSet { return smrRuleSet{} }

func (smrRuleSet) Unit() models.Unit { return models.UnitSMR }

func (smrRuleSet) Checks() []string {
	return []string{
		CheckPowerFactor,
		CheckSMREfficiency,
		CheckCurrentTHD,
		CheckVoltageTHD,
		CheckDCOutputVolt,
		CheckRipple,
	}
}

func (smrRuleSet) Evaluate(grid models.Grid) (*Outcome, error) {
	if grid.Unit != models.UnitSMR {
		return nil, fmt.Errorf("%w: %s grid given to smr rules", ErrWrongUnit, grid.Unit)
	}
	if err := models.CheckRowCount(len(grid.SMR)); err != nil {
		return nil, err
	}

	module := Classify(grid.SMR)
	slog.Debug("SMR module classified", "type", module.Type, "ratedCurrentA", module.RatedCurrentA)

	sc := smrContext{rows: grid.SMR, module: module}

	var verdicts []models.CellVerdict
	verdicts = append(verdicts, sc.checkPowerFactor()...)
	verdicts = append(verdicts, sc.checkEfficiency()...)
	verdicts = append(verdicts, sc.checkCurrentTHD()...)
	verdicts = append(verdicts, sc.checkVoltageTHD()...)
	verdicts = append(verdicts, sc.checkOutputVoltage()...)
	verdicts = append(verdicts, sc.checkRipple()...)

	return &Outcome{Module: &module, Verdicts: verdicts}, nil
}

// smrContext is the read-only view every SMR check works from.
type smrContext struct {
	rows   []models.SMRRow
	module models.ModuleClassification
}

func (sc smrContext) nominalInput(vin float64) bool {
	return withinPercent(vin, SMRNominalInputVolt, SMRInputVoltTolPct)
}

// atRatedCurrent reports whether the row is at the type's rated current ±1 A.
func (sc smrContext) atRatedCurrent(iout float64) bool {
	return withinAbs(iout, sc.module.RatedCurrentA, SMRFullLoadCurrentTolA)
}

func (sc smrContext) checkPowerFactor() []models.CellVerdict {
	out := make([]models.CellVerdict, 0, len(sc.rows))
	for i, r := range sc.rows {
		pf := math.Abs(r.PFIn)
		var invalid bool
		var limit string

		if sc.module.Type.IsSMPS() {
			minPF := SMPSPFGeneral
			if sc.nominalInput(r.VIn) && sc.atRatedCurrent(r.IOut) {
				minPF = SMPSPFNominal
			}
			invalid = pf < minPF
			limit = fmt.Sprintf("|PF| >= %s", num(minPF))
		} else {
			highLoad := sc.nominalInput(r.VIn) && r.IOut >= TelecomHighLoadFrac*sc.module.RatedCurrentA
			switch {
			case highLoad && r.PFLeading():
				invalid = r.PFIn < TelecomPFLeadNominal
				limit = fmt.Sprintf("leading PF >= %s at high load", num(TelecomPFLeadNominal))
			case highLoad:
				invalid = pf < TelecomPFLagNominal
				limit = fmt.Sprintf("lagging |PF| >= %s at high load", num(TelecomPFLagNominal))
			default:
				invalid = pf < TelecomPFGeneral
				limit = fmt.Sprintf("|PF| >= %s", num(TelecomPFGeneral))
			}
		}

		out = append(out, models.NewCellVerdict(i, models.ColPFIn, CheckPowerFactor, statusOf(invalid), r.PFIn, limit))
	}
	return out
}

func (sc smrContext) checkEfficiency() []models.CellVerdict {
	nominalMin, generalMin := TelecomEfficiencyNominal, TelecomEfficiencyGeneral
	if sc.module.Type.IsSMPS() {
		nominalMin, generalMin = SMPSEfficiencyNominal, SMPSEfficiencyGeneral
	}

	out := make([]models.CellVerdict, 0, len(sc.rows))
	for i, r := range sc.rows {
		minEff := generalMin
		if sc.nominalInput(r.VIn) && sc.atRatedCurrent(r.IOut) {
			minEff = nominalMin
		}
		invalid := r.Efficiency < minEff
		abnormal := r.Efficiency > SMREfficiencyAbnormal

		limit := fmt.Sprintf(">= %s%%; abnormal > %s%%", num(minEff), num(SMREfficiencyAbnormal))
		v := models.NewCellVerdict(i, models.ColEfficiency, CheckSMREfficiency, statusOf(invalid), r.Efficiency, limit)
		v.Abnormal = abnormal
		if abnormal && !invalid {
			v.Status = models.StatusAbnormal
		}
		out = append(out, v)
	}
	return out
}

func (sc smrContext) checkCurrentTHD() []models.CellVerdict {
	minLoad := SMRIthdMinLoadFrac * sc.module.RatedCurrentA
	limit := fmt.Sprintf("Ithd < %s%% when I(out) >= %s A", num(SMRIthdLimit), num(minLoad))

	out := make([]models.CellVerdict, 0, len(sc.rows))
	for i, r := range sc.rows {
		status := models.StatusNotEvaluated
		if r.IOut >= minLoad {
			status = statusOf(r.IthdIn >= SMRIthdLimit)
		}
		out = append(out, models.NewCellVerdict(i, models.ColIthdIn, CheckCurrentTHD, status, r.IthdIn, limit))
	}
	return out
}

func (sc smrContext) checkVoltageTHD() []models.CellVerdict {
	maxVthd := TelecomVthdLimit
	if sc.module.Type.IsSMPS() {
		maxVthd = SMPSVthdLimit
	}
	limit := fmt.Sprintf("Vthd < %s%%", num(maxVthd))

	out := make([]models.CellVerdict, 0, len(sc.rows))
	for i, r := range sc.rows {
		out = append(out, models.NewCellVerdict(i, models.ColVthdIn, CheckVoltageTHD,
			statusOf(r.VthdIn >= maxVthd), r.VthdIn, limit))
	}
	return out
}

func (sc smrContext) checkOutputVoltage() []models.CellVerdict {
	lo, hi := TelecomVOutMin, TelecomVOutMax
	if sc.module.Type.IsSMPS() {
		lo, hi = SMPSVOutMin, SMPSVOutMax
	}
	limit := fmt.Sprintf("%s-%s V DC", num(lo), num(hi))

	out := make([]models.CellVerdict, 0, len(sc.rows))
	for i, r := range sc.rows {
		out = append(out, models.NewCellVerdict(i, models.ColVOut, CheckDCOutputVolt,
			statusOf(r.VOut < lo || r.VOut > hi), r.VOut, limit))
	}
	return out
}

func (sc smrContext) checkRipple() []models.CellVerdict {
	limit := fmt.Sprintf("ripple <= %s mV", num(SMRRippleLimitMV))
	out := make([]models.CellVerdict, 0, len(sc.rows))
	for i, r := range sc.rows {
		out = append(out, models.NewCellVerdict(i, models.ColRippleOut, CheckRipple,
			statusOf(r.RippleOut > SMRRippleLimitMV), r.RippleOut, limit))
	}
	return out
}

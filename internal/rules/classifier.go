package rules

import (
	"log/slog"

	"github.com/spboyer/acceptbench/internal/models"
)

// Classification thresholds for SMR sub-type detection.
const (
	// SMPSMeanOutputVolt separates 110 V SMPS modules from 48 V telecom ones.
	SMPSMeanOutputVolt = 100.0

	TelecomREInputVolt    = 165.0
	TelecomNonREInputVolt = 90.0
	ClassifyInputTolPct   = 10.0
)

// Classify detects the SMR sub-type from the mean output voltage and the first
// row's input voltage. A first-row input voltage that matches neither telecom
// window falls back to [models.ModuleTelecomRE]; that is policy, not an error.
func Classify(rows []models.SMRRow) models.ModuleClassification {
	if meanOutputVolt(rows) > SMPSMeanOutputVolt {
		return models.ModuleClassification{Type: models.ModuleSMPS, RatedCurrentA: models.RatedCurrentSMPS}
	}

	var vin float64
	if len(rows) > 0 {
		vin = rows[0].VIn
	}

	mt := models.ModuleTelecomRE
	switch {
	case withinPercent(vin, TelecomREInputVolt, ClassifyInputTolPct):
		mt = models.ModuleTelecomRE
	case withinPercent(vin, TelecomNonREInputVolt, ClassifyInputTolPct):
		mt = models.ModuleTelecomNonRE
	default:
		slog.Debug("SMR first-row input voltage matches no telecom window, using RE", "vIn", vin)
	}
	return models.ModuleClassification{Type: mt, RatedCurrentA: models.RatedCurrentTelecom}
}

func meanOutputVolt(rows []models.SMRRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rows {
		sum += r.VOut
	}
	return sum / float64(len(rows))
}

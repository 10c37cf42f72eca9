// Package vitals derives secondary vital-sign metrics from a snapshot. All
// functions are pure and recomputed on demand; nothing here is cached.
package vitals

import (
	"fmt"
	"math"

	"stealthcompany.com/sentinelcare/internal/backend"
)

// MeanArterialPressure estimates MAP from systolic and diastolic pressure
func MeanArterialPressure(systolic, diastolic float64) float64 {
	return math.Round((systolic + 2*diastolic) / 3)
}

// ShockIndex is heart rate over systolic pressure, unrounded
func ShockIndex(heartRate, systolic float64) float64 {
	return heartRate / systolic
}

// PulsePressure is the systolic-diastolic spread
func PulsePressure(systolic, diastolic float64) float64 {
	return systolic - diastolic
}

// O2Gap is the distance from the current SpO2 reading to full saturation
func O2Gap(spo2 float64) float64 {
	return 100 - spo2
}

// Placeholder is rendered when a metric's inputs are absent
const Placeholder = "--"

// Metric is one rendered metric row
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Extra string `json:"extra,omitempty"`
}

// present reports whether all inputs are usable readings. A zero reading is
// treated as absent, matching the feed's behavior of never emitting zeros.
func present(values ...float64) bool {
	for _, v := range values {
		if v == 0 {
			return false
		}
	}
	return true
}

// Derived assembles the rendered metric rows for one simulation result.
// Every row falls back to the placeholder when its inputs are absent rather
// than computing on missing data.
func Derived(result *backend.SimulationResult) []Metric {
	rows := []Metric{
		{Label: "Heart rate", Value: Placeholder},
		{Label: "Respiratory rate", Value: Placeholder},
		{Label: "Blood pressure", Value: Placeholder},
		{Label: "Mean arterial pressure", Value: Placeholder},
		{Label: "Shock index", Value: Placeholder},
		{Label: "Pulse pressure", Value: Placeholder},
		{Label: "SpO2", Value: Placeholder},
		{Label: "O2 gap", Value: Placeholder},
		{Label: "Temperature", Value: Placeholder},
		{Label: "Risk score", Value: Placeholder},
	}
	if result == nil {
		return rows
	}

	v := result.Vitals
	if present(v.HeartRate) {
		rows[0].Value = fmt.Sprintf("%.0f bpm", v.HeartRate)
	}
	if present(v.RespiratoryRate) {
		rows[1].Value = fmt.Sprintf("%.0f rpm", v.RespiratoryRate)
	}
	if present(v.SystolicBP, v.DiastolicBP) {
		rows[2].Value = fmt.Sprintf("%.0f/%.0f mmHg", v.SystolicBP, v.DiastolicBP)
		rows[3].Value = fmt.Sprintf("%.0f mmHg", MeanArterialPressure(v.SystolicBP, v.DiastolicBP))
		rows[5].Value = fmt.Sprintf("%.0f mmHg", PulsePressure(v.SystolicBP, v.DiastolicBP))
	}
	if present(v.HeartRate, v.SystolicBP) {
		rows[4].Value = fmt.Sprintf("%.2f", ShockIndex(v.HeartRate, v.SystolicBP))
	}
	if present(v.SpO2) {
		rows[6].Value = fmt.Sprintf("%.1f%%", v.SpO2)
		rows[7].Value = fmt.Sprintf("%.0f%% to 100%%", O2Gap(v.SpO2))
	}
	if present(v.TemperatureC) {
		rows[8].Value = fmt.Sprintf("%.1f °C", v.TemperatureC)
	}
	if present(result.Score.RiskScore) {
		rows[9].Value = fmt.Sprintf("%.1f%%", result.Score.RiskScore*100)
		rows[9].Extra = string(result.Score.RiskLabel)
	}
	return rows
}

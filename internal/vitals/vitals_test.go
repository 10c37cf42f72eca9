package vitals

import (
	"math"
	"testing"

	"stealthcompany.com/sentinelcare/internal/backend"
)

func TestMeanArterialPressure(t *testing.T) {
	tests := []struct {
		name      string
		systolic  float64
		diastolic float64
		expected  float64
	}{
		{
			name:      "Textbook normal pressure",
			systolic:  120,
			diastolic: 80,
			expected:  93,
		},
		{
			name:      "Hypotensive reading rounds up",
			systolic:  85,
			diastolic: 55,
			expected:  65,
		},
		{
			name:      "Hypertensive reading",
			systolic:  160,
			diastolic: 100,
			expected:  120,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeanArterialPressure(tt.systolic, tt.diastolic)
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestShockIndex(t *testing.T) {
	got := ShockIndex(90, 120)
	if math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Expected 0.75, got %v", got)
	}

	// Unrounded: 100/130 must keep full precision
	got = ShockIndex(100, 130)
	if math.Abs(got-100.0/130.0) > 1e-12 {
		t.Errorf("Expected unrounded ratio, got %v", got)
	}
}

func TestPulsePressure(t *testing.T) {
	if got := PulsePressure(120, 80); got != 40 {
		t.Errorf("Expected 40, got %v", got)
	}
}

func TestO2Gap(t *testing.T) {
	if got := O2Gap(96); got != 4 {
		t.Errorf("Expected 4, got %v", got)
	}
}

func TestDerivedPlaceholdersWithoutSnapshot(t *testing.T) {
	rows := Derived(nil)
	if len(rows) == 0 {
		t.Fatal("Expected metric rows for a nil result")
	}
	for _, row := range rows {
		if row.Value != Placeholder {
			t.Errorf("Expected placeholder for %q, got %q", row.Label, row.Value)
		}
	}
}

func TestDerivedRendersSnapshot(t *testing.T) {
	result := &backend.SimulationResult{
		Vitals: backend.VitalsSnapshot{
			HeartRate:       90,
			RespiratoryRate: 16,
			SystolicBP:      120,
			DiastolicBP:     80,
			SpO2:            96,
			TemperatureC:    36.6,
		},
		Score: backend.RiskScore{
			RiskScore: 0.42,
			RiskLabel: backend.SeverityModerate,
		},
	}

	rows := Derived(result)
	byLabel := make(map[string]Metric, len(rows))
	for _, row := range rows {
		byLabel[row.Label] = row
	}

	expectations := map[string]string{
		"Heart rate":             "90 bpm",
		"Respiratory rate":       "16 rpm",
		"Blood pressure":         "120/80 mmHg",
		"Mean arterial pressure": "93 mmHg",
		"Shock index":            "0.75",
		"Pulse pressure":         "40 mmHg",
		"SpO2":                   "96.0%",
		"O2 gap":                 "4% to 100%",
		"Temperature":            "36.6 °C",
		"Risk score":             "42.0%",
	}
	for label, want := range expectations {
		row, ok := byLabel[label]
		if !ok {
			t.Errorf("Missing metric row %q", label)
			continue
		}
		if row.Value != want {
			t.Errorf("Metric %q: expected %q, got %q", label, want, row.Value)
		}
	}

	if byLabel["Risk score"].Extra != "moderate" {
		t.Errorf("Expected risk label extra, got %q", byLabel["Risk score"].Extra)
	}
}

func TestDerivedPartialInputs(t *testing.T) {
	// Missing systolic: BP-derived rows stay placeholders, HR still renders
	result := &backend.SimulationResult{
		Vitals: backend.VitalsSnapshot{HeartRate: 72},
	}

	rows := Derived(result)
	for _, row := range rows {
		switch row.Label {
		case "Heart rate":
			if row.Value != "72 bpm" {
				t.Errorf("Expected heart rate to render, got %q", row.Value)
			}
		case "Mean arterial pressure", "Shock index", "Pulse pressure", "Blood pressure":
			if row.Value != Placeholder {
				t.Errorf("Expected placeholder for %q, got %q", row.Label, row.Value)
			}
		}
	}
}

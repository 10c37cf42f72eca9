package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stealthcompany.com/sentinelcare/internal/backend"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("file:" + filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	return store
}

func TestSignalRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	alerts := []backend.Alert{
		{AlertID: "a1", PatientID: "p1", Severity: backend.SeverityModerate, Message: "HR 115", CreatedAt: created},
		{AlertID: "a2", PatientID: "p2", Severity: backend.SeverityHigh, Message: "SpO2 88%", CreatedAt: created.Add(time.Minute)},
	}
	for i, a := range alerts {
		if err := store.RecordSignal(ctx, a, created.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Failed to record signal: %v", err)
		}
	}

	records, err := store.RecentSignals(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to read signals: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].AlertID != "a2" {
		t.Errorf("Expected newest signal first, got %q", records[0].AlertID)
	}
	if records[0].Severity != backend.SeverityHigh {
		t.Errorf("Expected severity preserved, got %q", records[0].Severity)
	}
	if !records[1].CreatedAt.Equal(created) {
		t.Errorf("Expected creation timestamp preserved, got %v", records[1].CreatedAt)
	}
}

func TestCycleRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	result := &backend.SimulationResult{
		Vitals: backend.VitalsSnapshot{PatientID: "p1", HeartRate: 92, SystolicBP: 121, DiastolicBP: 79, SpO2: 95},
		Score:  backend.RiskScore{PatientID: "p1", RiskScore: 0.37, RiskLabel: backend.SeverityModerate, ModelVersion: "mock-1"},
	}
	at := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	if err := store.RecordCycle(ctx, "p1", backend.SeverityModerate, result, at); err != nil {
		t.Fatalf("Failed to record cycle: %v", err)
	}

	records, err := store.RecentCycles(ctx, 5)
	if err != nil {
		t.Fatalf("Failed to read cycles: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.PatientID != "p1" || rec.Risk != backend.SeverityModerate {
		t.Errorf("Expected cycle metadata preserved, got %+v", rec)
	}
	if rec.Result.Score.RiskScore != 0.37 || rec.Result.Vitals.HeartRate != 92 {
		t.Errorf("Expected result payload preserved, got %+v", rec.Result)
	}
	if !rec.At.Equal(at) {
		t.Errorf("Expected timestamp preserved, got %v", rec.At)
	}
}

func TestRecentLimits(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		alert := backend.Alert{AlertID: "a", PatientID: "p", Severity: backend.SeverityNormal, CreatedAt: base}
		if err := store.RecordSignal(ctx, alert, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("Failed to record signal: %v", err)
		}
	}

	records, err := store.RecentSignals(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to read signals: %v", err)
	}
	if len(records) != 10 {
		t.Errorf("Expected limit of 10, got %d", len(records))
	}
}

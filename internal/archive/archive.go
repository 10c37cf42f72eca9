// Package archive keeps a local SQLite history of raised alert signals and
// completed simulation cycles for offline review. Writes are best-effort;
// callers log and move on when they fail.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"stealthcompany.com/sentinelcare/internal/backend"
)

// SignalRecord is one archived notification signal
type SignalRecord struct {
	AlertID    string           `json:"alert_id"`
	PatientID  string           `json:"patient_id"`
	Severity   backend.Severity `json:"severity"`
	Message    string           `json:"message"`
	CreatedAt  time.Time        `json:"created_at"`
	ObservedAt time.Time        `json:"observed_at"`
}

// CycleRecord is one archived simulation cycle
type CycleRecord struct {
	PatientID string                   `json:"patient_id"`
	Risk      backend.Severity         `json:"risk"`
	Result    backend.SimulationResult `json:"result"`
	At        time.Time                `json:"at"`
}

// Store is a local history archive
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at dsn
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:console.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Init creates the schema if missing
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			alert_id TEXT NOT NULL,
			patient_id TEXT NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TEXT NOT NULL,
			observed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_observed ON signals(observed_at)`,
		`CREATE TABLE IF NOT EXISTS cycles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			patient_id TEXT NOT NULL,
			risk TEXT NOT NULL,
			result_json TEXT NOT NULL,
			at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_at ON cycles(at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSignal archives one raised notification signal
func (s *Store) RecordSignal(ctx context.Context, alert backend.Alert, observedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO signals (alert_id, patient_id, severity, message, created_at, observed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		alert.AlertID,
		alert.PatientID,
		string(alert.Severity),
		alert.Message,
		alert.CreatedAt.UTC().Format(time.RFC3339Nano),
		observedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// RecordCycle archives one completed simulation cycle
func (s *Store) RecordCycle(ctx context.Context, patientID string, risk backend.Severity, result *backend.SimulationResult, at time.Time) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cycles (patient_id, risk, result_json, at)
		VALUES (?, ?, ?, ?)`,
		patientID,
		string(risk),
		string(encoded),
		at.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// RecentSignals returns the most recently observed signals, newest first
func (s *Store) RecentSignals(ctx context.Context, limit int) ([]SignalRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT alert_id, patient_id, severity, message, created_at, observed_at
		FROM signals ORDER BY observed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SignalRecord
	for rows.Next() {
		var rec SignalRecord
		var severity, createdAt, observedAt string
		if err := rows.Scan(&rec.AlertID, &rec.PatientID, &severity, &rec.Message, &createdAt, &observedAt); err != nil {
			return nil, err
		}
		rec.Severity = backend.Severity(severity)
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, err
		}
		if rec.ObservedAt, err = time.Parse(time.RFC3339Nano, observedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecentCycles returns the most recent simulation cycles, newest first
func (s *Store) RecentCycles(ctx context.Context, limit int) ([]CycleRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT patient_id, risk, result_json, at
		FROM cycles ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []CycleRecord
	for rows.Next() {
		var rec CycleRecord
		var risk, resultJSON, at string
		if err := rows.Scan(&rec.PatientID, &risk, &resultJSON, &at); err != nil {
			return nil, err
		}
		rec.Risk = backend.Severity(risk)
		if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
			return nil, err
		}
		if rec.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Package monitor drives the simulate-vitals-and-score cycle for a selected
// subject, either on explicit operator action or on the live-mode cadence.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/sentinelcare/internal/backend"
	"stealthcompany.com/sentinelcare/internal/metrics"
	"stealthcompany.com/sentinelcare/internal/vitals"
)

// Simulator runs one vitals-generation and risk-scoring cycle
type Simulator interface {
	Simulate(ctx context.Context, patientID string, risk backend.Severity) (*backend.SimulationResult, error)
}

// CycleRecorder receives a copy of every successful cycle, best-effort
type CycleRecorder interface {
	RecordCycle(ctx context.Context, patientID string, risk backend.Severity, result *backend.SimulationResult, at time.Time) error
}

// Snapshot is the session state served to the shell
type Snapshot struct {
	PatientID string                    `json:"patient_id"`
	Risk      backend.Severity          `json:"risk"`
	Loading   bool                      `json:"loading"`
	Error     string                    `json:"error,omitempty"`
	Result    *backend.SimulationResult `json:"result,omitempty"`
	Metrics   []vitals.Metric           `json:"metrics"`
}

// Session holds the monitoring view state for one operator: the selected
// subject, the risk profile, and the last displayed result. The result and
// score are always replaced wholesale so a partially updated composite is
// never visible.
type Session struct {
	sim      Simulator
	recorder CycleRecorder

	mu        sync.Mutex
	patientID string
	risk      backend.Severity
	epoch     uint64
	loading   bool
	lastErr   string
	result    *backend.SimulationResult
}

// NewSession creates a session over the given simulator
func NewSession(sim Simulator) *Session {
	return &Session{
		sim:  sim,
		risk: backend.SeverityNormal,
	}
}

// SetRecorder installs an optional cycle recorder
func (s *Session) SetRecorder(r CycleRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder = r
}

// SetSubject selects the monitored subject. Changing the subject bumps the
// session epoch so a response still in flight for the previous subject is
// discarded instead of being applied to the new one.
func (s *Session) SetSubject(patientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.patientID == patientID {
		return
	}
	s.patientID = patientID
	s.epoch++
}

// Subject returns the currently selected subject ("" when none)
func (s *Session) Subject() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patientID
}

// SetRiskProfile selects the risk profile used for simulation cycles
func (s *Session) SetRiskProfile(risk backend.Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if risk == "" {
		risk = backend.SeverityNormal
	}
	s.risk = risk
}

// Simulate runs one cycle for the selected subject. Silent cycles set no
// loading state and surface no error; non-silent cycles do both. Without a
// selected subject the call is a no-op.
func (s *Session) Simulate(ctx context.Context, silent bool) error {
	s.mu.Lock()
	if s.patientID == "" {
		s.mu.Unlock()
		return nil
	}
	patientID := s.patientID
	risk := s.risk
	epoch := s.epoch
	if !silent {
		s.loading = true
		s.lastErr = ""
	}
	s.mu.Unlock()

	mode := "manual"
	if silent {
		mode = "live"
	}

	result, err := s.sim.Simulate(ctx, patientID, risk)

	s.mu.Lock()
	if s.epoch != epoch {
		// The subject changed mid-flight; drop the stale response
		if !silent {
			s.loading = false
		}
		s.mu.Unlock()
		metrics.RecordSimulationCycle(mode, "stale")
		return nil
	}

	if err != nil {
		if !silent {
			s.loading = false
			s.lastErr = err.Error()
		}
		s.mu.Unlock()

		if silent {
			// Swallowed: scheduled cycles never interrupt the operator
			log.Debug().Err(err).Str("patient_id", patientID).Msg("Silent simulation cycle failed")
		}
		metrics.RecordSimulationCycle(mode, "error")
		return err
	}

	s.result = result
	if !silent {
		s.loading = false
	}
	recorder := s.recorder
	s.mu.Unlock()

	metrics.RecordSimulationCycle(mode, "success")

	if recorder != nil {
		if err := recorder.RecordCycle(ctx, patientID, risk, result, time.Now().UTC()); err != nil {
			log.Debug().Err(err).Str("patient_id", patientID).Msg("Failed to record simulation cycle")
		}
	}
	return nil
}

// Snapshot returns the current session state plus derived metric rows
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		PatientID: s.patientID,
		Risk:      s.risk,
		Loading:   s.loading,
		Error:     s.lastErr,
		Result:    s.result,
		Metrics:   vitals.Derived(s.result),
	}
}

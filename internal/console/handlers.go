// Package console serves the operator-facing HTTP surface consumed by the
// navigation shell: dashboard summary, monitoring state and controls, the
// alert notification signal, roster mutations, and preferences.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/sentinelcare/internal/alertwatch"
	"stealthcompany.com/sentinelcare/internal/archive"
	"stealthcompany.com/sentinelcare/internal/backend"
	"stealthcompany.com/sentinelcare/internal/dashboard"
	"stealthcompany.com/sentinelcare/internal/monitor"
	"stealthcompany.com/sentinelcare/internal/prefs"
	"stealthcompany.com/sentinelcare/internal/roster"
)

// AuditFetcher fetches the audit trail
type AuditFetcher interface {
	Audit(ctx context.Context, limit int) ([]backend.AuditEntry, error)
}

// Console wires the live components behind the HTTP surface. Archive may be
// nil when no local history database is configured.
type Console struct {
	Roster    *roster.Roster
	Session   *monitor.Session
	Scheduler *monitor.Scheduler
	Poller    *alertwatch.Poller
	Prefs     *prefs.Store
	Alerts    alertwatch.Fetcher
	Audit     AuditFetcher
	Archive   *archive.Store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders a surfaced error. Backend rejections keep their status
// and body text so the operator sees the backend's own message.
func writeError(w http.ResponseWriter, fallbackStatus int, err error) {
	status := fallbackStatus
	message := err.Error()

	var reqErr *backend.RequestError
	if errors.As(err, &reqErr) {
		status = reqErr.Status
		message = reqErr.Detail
	}

	writeJSON(w, status, map[string]string{"error": message})
}

// HealthHandler reports liveness
func (c *Console) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "sentinelcare-console",
	})
}

// DashboardHandler serves the aggregated command overview. Each source
// collection is fetched independently; a failing source contributes an empty
// collection rather than failing the whole view.
func (c *Console) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.Roster.Refresh(ctx); err != nil {
		log.Debug().Err(err).Msg("Roster refresh failed for dashboard")
	}

	alerts, err := c.Alerts.Alerts(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Alert fetch failed for dashboard")
		alerts = nil
	}

	summary := dashboard.Build(c.Roster.Patients(), alerts, c.Roster.Tasks())
	writeJSON(w, http.StatusOK, summary)
}

type monitoringView struct {
	monitor.Snapshot
	LiveEnabled bool `json:"live_enabled"`
}

// MonitoringHandler serves the simulation session state
func (c *Console) MonitoringHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, monitoringView{
		Snapshot:    c.Session.Snapshot(),
		LiveEnabled: c.Scheduler.Enabled(),
	})
}

// SimulateHandler runs one manual (surfaced) simulation cycle
func (c *Console) SimulateHandler(w http.ResponseWriter, r *http.Request) {
	if c.Session.Subject() == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no subject selected"})
		return
	}

	if err := c.Session.Simulate(r.Context(), false); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, monitoringView{
		Snapshot:    c.Session.Snapshot(),
		LiveEnabled: c.Scheduler.Enabled(),
	})
}

// LiveModeHandler toggles the live-mode scheduler
func (c *Console) LiveModeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if body.Enabled {
		c.Scheduler.Enable(context.WithoutCancel(r.Context()))
	} else {
		c.Scheduler.Disable()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"live_enabled": c.Scheduler.Enabled()})
}

// SubjectHandler selects the monitored subject and risk profile
func (c *Console) SubjectHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PatientID string           `json:"patient_id"`
		Risk      backend.Severity `json:"risk"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	c.Session.SetSubject(body.PatientID)
	if body.Risk != "" {
		c.Session.SetRiskProfile(body.Risk)
	}
	writeJSON(w, http.StatusOK, c.Session.Snapshot())
}

// AlertSignalHandler serves the transient notification signal state
func (c *Console) AlertSignalHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.Poller.Signal())
}

// ListPatientsHandler serves the patient roster
func (c *Console) ListPatientsHandler(w http.ResponseWriter, r *http.Request) {
	if err := c.Roster.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Roster.Patients())
}

// CreatePatientHandler registers a new patient
func (c *Console) CreatePatientHandler(w http.ResponseWriter, r *http.Request) {
	var payload backend.PatientCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	created, err := c.Roster.CreatePatient(r.Context(), payload)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ToggleMonitoringHandler flips a patient's monitoring flag, optimistically
// with rollback on failure
func (c *Console) ToggleMonitoringHandler(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]

	updated, err := c.Roster.ToggleMonitoring(r.Context(), patientID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ListTasksHandler serves the task collection
func (c *Console) ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	if err := c.Roster.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Roster.Tasks())
}

// CreateTaskHandler creates a new task
func (c *Console) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var payload backend.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	created, err := c.Roster.CreateTask(r.Context(), payload)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateTaskHandler patches a task's status
func (c *Console) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	updated, err := c.Roster.UpdateTaskStatus(r.Context(), taskID, body.Status)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// AuditHandler passes the audit trail through from the backend
func (c *Console) AuditHandler(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := c.Audit.Audit(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetPrefsHandler loads preferences, silently falling back to defaults
func (c *Console) GetPrefsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.Prefs.Load(r.Context()))
}

// SavePrefsHandler overwrites preferences; failures are surfaced
func (c *Console) SavePrefsHandler(w http.ResponseWriter, r *http.Request) {
	var payload backend.Preferences
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	saved, err := c.Prefs.Save(r.Context(), payload)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// HistorySignalsHandler serves archived notification signals
func (c *Console) HistorySignalsHandler(w http.ResponseWriter, r *http.Request) {
	if c.Archive == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history archive not configured"})
		return
	}

	records, err := c.Archive.RecentSignals(r.Context(), historyLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []archive.SignalRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// HistoryCyclesHandler serves archived simulation cycles
func (c *Console) HistoryCyclesHandler(w http.ResponseWriter, r *http.Request) {
	if c.Archive == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history archive not configured"})
		return
	}

	records, err := c.Archive.RecentCycles(r.Context(), historyLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []archive.CycleRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func historyLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 20
}

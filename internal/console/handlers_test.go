package console

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stealthcompany.com/sentinelcare/internal/alertwatch"
	"stealthcompany.com/sentinelcare/internal/backend"
	"stealthcompany.com/sentinelcare/internal/dashboard"
	"stealthcompany.com/sentinelcare/internal/monitor"
	"stealthcompany.com/sentinelcare/internal/prefs"
	"stealthcompany.com/sentinelcare/internal/roster"
)

// fakeBackend implements the roster, prefs, alert and audit interfaces
type fakeBackend struct {
	patients []backend.Patient
	tasks    []backend.Task
	alerts   []backend.Alert
	entries  []backend.AuditEntry
	prefsRec backend.Preferences

	simResult *backend.SimulationResult
	simErr    error
	saveErr   error
}

func (f *fakeBackend) Patients(ctx context.Context) ([]backend.Patient, error) {
	return f.patients, nil
}

func (f *fakeBackend) CreatePatient(ctx context.Context, payload backend.PatientCreate) (backend.Patient, error) {
	return backend.Patient{ID: "p-new", Name: payload.Name, Monitoring: payload.Monitoring}, nil
}

func (f *fakeBackend) SetPatientMonitoring(ctx context.Context, patientID string, monitoring bool) (backend.Patient, error) {
	return backend.Patient{ID: patientID, Monitoring: monitoring}, nil
}

func (f *fakeBackend) Tasks(ctx context.Context, patientID string) ([]backend.Task, error) {
	return f.tasks, nil
}

func (f *fakeBackend) CreateTask(ctx context.Context, payload backend.TaskCreate) (backend.Task, error) {
	return backend.Task{ID: "t-new", Title: payload.Title, Status: backend.TaskStatusOpen}, nil
}

func (f *fakeBackend) UpdateTask(ctx context.Context, taskID string, payload backend.TaskUpdate) (backend.Task, error) {
	updated := backend.Task{ID: taskID}
	if payload.Status != nil {
		updated.Status = *payload.Status
	}
	return updated, nil
}

func (f *fakeBackend) Alerts(ctx context.Context) ([]backend.Alert, error) {
	return f.alerts, nil
}

func (f *fakeBackend) Audit(ctx context.Context, limit int) ([]backend.AuditEntry, error) {
	return f.entries, nil
}

func (f *fakeBackend) NotificationPrefs(ctx context.Context) (backend.Preferences, error) {
	return f.prefsRec, nil
}

func (f *fakeBackend) SaveNotificationPrefs(ctx context.Context, p backend.Preferences) (backend.Preferences, error) {
	if f.saveErr != nil {
		return backend.Preferences{}, f.saveErr
	}
	return p, nil
}

func (f *fakeBackend) Simulate(ctx context.Context, patientID string, risk backend.Severity) (*backend.SimulationResult, error) {
	if f.simErr != nil {
		return nil, f.simErr
	}
	return f.simResult, nil
}

func newTestConsole(api *fakeBackend) *Console {
	session := monitor.NewSession(api)
	return &Console{
		Roster:    roster.New(api),
		Session:   session,
		Scheduler: monitor.NewScheduler(session, time.Hour),
		Poller:    alertwatch.NewPoller(api, time.Hour, time.Hour),
		Prefs:     prefs.New(api),
		Alerts:    api,
		Audit:     api,
	}
}

func TestHealthHandler(t *testing.T) {
	c := newTestConsole(&fakeBackend{})
	router := SetupRoutes(c)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
}

func TestDashboardHandler(t *testing.T) {
	api := &fakeBackend{
		patients: []backend.Patient{
			{ID: "p1", Risk: backend.SeverityHigh, Monitoring: true},
			{ID: "p2", Risk: backend.SeverityNormal, Monitoring: true},
		},
		alerts: []backend.Alert{
			{AlertID: "a1", Severity: backend.SeverityHigh, CreatedAt: time.Now()},
		},
		tasks: []backend.Task{
			{ID: "t1", Status: backend.TaskStatusOpen},
		},
	}
	c := newTestConsole(api)
	router := SetupRoutes(c)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var summary dashboard.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.MonitoredPatients != 2 || summary.HighAlerts != 1 || summary.OpenTasks != 1 {
		t.Errorf("Unexpected summary %+v", summary)
	}
}

func TestSimulateHandlerRequiresSubject(t *testing.T) {
	c := newTestConsole(&fakeBackend{})
	router := SetupRoutes(c)

	req := httptest.NewRequest("POST", "/monitoring/simulate", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without subject, got %d", rr.Code)
	}
}

func TestSimulateHandlerSurfacesBackendError(t *testing.T) {
	api := &fakeBackend{simErr: &backend.RequestError{Status: http.StatusServiceUnavailable, Detail: "scoring offline"}}
	c := newTestConsole(api)
	c.Session.SetSubject("p1")
	router := SetupRoutes(c)

	req := httptest.NewRequest("POST", "/monitoring/simulate", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected backend status passed through, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "scoring offline") {
		t.Errorf("Expected backend detail in body, got %s", rr.Body.String())
	}
}

func TestSimulateHandlerReturnsSnapshot(t *testing.T) {
	api := &fakeBackend{simResult: &backend.SimulationResult{
		Vitals: backend.VitalsSnapshot{HeartRate: 90, SystolicBP: 120, DiastolicBP: 80, SpO2: 96},
		Score:  backend.RiskScore{RiskScore: 0.5, RiskLabel: backend.SeverityModerate},
	}}
	c := newTestConsole(api)
	c.Session.SetSubject("p1")
	router := SetupRoutes(c)

	req := httptest.NewRequest("POST", "/monitoring/simulate", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var view struct {
		Result *backend.SimulationResult `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to decode view: %v", err)
	}
	if view.Result == nil || view.Result.Score.RiskScore != 0.5 {
		t.Errorf("Expected result in snapshot, got %+v", view.Result)
	}
}

func TestLiveModeHandlerTogglesScheduler(t *testing.T) {
	c := newTestConsole(&fakeBackend{})
	router := SetupRoutes(c)

	req := httptest.NewRequest("POST", "/monitoring/live", strings.NewReader(`{"enabled":true}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !c.Scheduler.Enabled() {
		t.Error("Expected scheduler enabled")
	}

	req = httptest.NewRequest("POST", "/monitoring/live", strings.NewReader(`{"enabled":false}`))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if c.Scheduler.Enabled() {
		t.Error("Expected scheduler disabled")
	}
}

func TestSubjectHandler(t *testing.T) {
	c := newTestConsole(&fakeBackend{})
	router := SetupRoutes(c)

	body := `{"patient_id":"p9","risk":"high"}`
	req := httptest.NewRequest("POST", "/monitoring/subject", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if got := c.Session.Subject(); got != "p9" {
		t.Errorf("Expected subject p9, got %q", got)
	}
}

func TestToggleMonitoringHandler(t *testing.T) {
	api := &fakeBackend{patients: []backend.Patient{{ID: "p1", Monitoring: true}}}
	c := newTestConsole(api)
	if err := c.Roster.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	router := SetupRoutes(c)

	req := httptest.NewRequest("PATCH", "/patients/p1/monitor", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var updated backend.Patient
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to decode patient: %v", err)
	}
	if updated.Monitoring {
		t.Error("Expected monitoring flipped off")
	}
}

func TestSavePrefsHandlerSurfacesError(t *testing.T) {
	api := &fakeBackend{saveErr: errors.New("validation failed")}
	c := newTestConsole(api)
	router := SetupRoutes(c)

	body := `{"email":"bad"}`
	req := httptest.NewRequest("POST", "/prefs", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "validation failed") {
		t.Errorf("Expected error message in body, got %s", rr.Body.String())
	}
}

func TestHistoryUnavailableWithoutArchive(t *testing.T) {
	c := newTestConsole(&fakeBackend{})
	router := SetupRoutes(c)

	req := httptest.NewRequest("GET", "/history/signals", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without archive, got %d", rr.Code)
	}
}

func TestAlertSignalHandler(t *testing.T) {
	c := newTestConsole(&fakeBackend{})
	router := SetupRoutes(c)

	req := httptest.NewRequest("GET", "/alerts/signal", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var signal alertwatch.Signal
	if err := json.Unmarshal(rr.Body.Bytes(), &signal); err != nil {
		t.Fatalf("Failed to decode signal: %v", err)
	}
	if signal.Flashing {
		t.Error("Expected no flash before any poll")
	}
}

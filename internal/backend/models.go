package backend

import (
	"encoding/json"
	"time"
)

// Severity classifies alerts and risk labels
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// Task status values
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task priority values
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Patient is a monitored subject. The backend emits the monitoring flag under
// either "isMonitoring" or "is_monitoring"; decoding reconciles both into the
// single Monitoring field (default true when neither is present).
type Patient struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	Location   string   `json:"location"`
	Risk       Severity `json:"risk"`
	Monitoring bool     `json:"isMonitoring"`
	AssignedTo string   `json:"assigned_to,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// UnmarshalJSON reconciles the dual-named monitoring flag at the decode
// boundary so read sites only ever see the canonical Monitoring field.
func (p *Patient) UnmarshalJSON(data []byte) error {
	type patientAlias Patient
	aux := struct {
		*patientAlias
		MonitoringCamel *bool `json:"isMonitoring"`
		MonitoringSnake *bool `json:"is_monitoring"`
	}{patientAlias: (*patientAlias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch {
	case aux.MonitoringCamel != nil:
		p.Monitoring = *aux.MonitoringCamel
	case aux.MonitoringSnake != nil:
		p.Monitoring = *aux.MonitoringSnake
	default:
		p.Monitoring = true
	}
	return nil
}

// PatientCreate is the payload for creating a patient
type PatientCreate struct {
	Name       string   `json:"name"`
	Age        int      `json:"age"`
	Location   string   `json:"location"`
	Risk       Severity `json:"risk"`
	Monitoring bool     `json:"isMonitoring"`
	AssignedTo string   `json:"assigned_to,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// Alert is an immutable event from the backend alert feed
type Alert struct {
	AlertID     string    `json:"alert_id"`
	PatientID   string    `json:"patient_id"`
	PatientName string    `json:"patient_name,omitempty"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task is a clinical work item
type Task struct {
	ID         string     `json:"id"`
	PatientID  string     `json:"patient_id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Priority   string     `json:"priority"`
	AssignedTo string     `json:"assigned_to,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	CreatedBy  string     `json:"created_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// TaskCreate is the payload for creating a task
type TaskCreate struct {
	PatientID  string     `json:"patient_id"`
	Title      string     `json:"title"`
	Priority   string     `json:"priority,omitempty"`
	AssignedTo string     `json:"assigned_to,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

// TaskUpdate is a partial task patch; nil fields are left untouched
type TaskUpdate struct {
	Status     *string    `json:"status,omitempty"`
	Priority   *string    `json:"priority,omitempty"`
	AssignedTo *string    `json:"assigned_to,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

// VitalsSnapshot is one synthetic vitals reading
type VitalsSnapshot struct {
	PatientID       string    `json:"patient_id"`
	HeartRate       float64   `json:"heart_rate"`
	RespiratoryRate float64   `json:"respiratory_rate"`
	SystolicBP      float64   `json:"systolic_bp"`
	DiastolicBP     float64   `json:"diastolic_bp"`
	SpO2            float64   `json:"spo2"`
	TemperatureC    float64   `json:"temperature_c"`
	DeviceID        string    `json:"device_id,omitempty"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// RiskScore is the scoring service's verdict for one snapshot
type RiskScore struct {
	PatientID    string    `json:"patient_id"`
	RiskScore    float64   `json:"risk_score"`
	RiskLabel    Severity  `json:"risk_label"`
	ModelVersion string    `json:"model_version"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// SimulationResult is one complete simulate-and-score cycle
type SimulationResult struct {
	Vitals VitalsSnapshot `json:"vitals"`
	Score  RiskScore      `json:"score"`
	Alert  *Alert         `json:"alert,omitempty"`
}

// Preferences is the operator's notification-routing record
type Preferences struct {
	Email             string   `json:"email"`
	SMS               string   `json:"sms"`
	WebhookURL        string   `json:"webhook_url"`
	SeverityThreshold Severity `json:"severity_threshold"`
}

// DefaultPreferences returns the fallback record used when loading fails
func DefaultPreferences() Preferences {
	return Preferences{
		SeverityThreshold: SeverityModerate,
	}
}

// AuditEntry is one audit-trail event
type AuditEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	ActorRole string    `json:"actor_role,omitempty"`
	Path      string    `json:"path,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult is the response to a successful login
type LoginResult struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
}

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/sentinelcare/internal/metrics"
)

// RequestError is returned for any non-2xx backend response. Detail carries
// the response body text so operators see the backend's own message.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
}

// Client is a session-scoped client for the SentinelCare backend API. The
// bearer token lives on the client instance, not in package state, so
// independent sessions can coexist in one process.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu    sync.RWMutex
	token string
}

// NewClient creates a backend client for the given base URL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// SetToken installs a bearer token, e.g. one restored from a prior session
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token ("" when logged out)
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Logout clears the session token
func (c *Client) Logout() {
	c.SetToken("")
}

// do issues one JSON request against the backend and decodes the response
// into out when out is non-nil. Non-2xx responses become a *RequestError.
func (c *Client) do(ctx context.Context, method, path, operation string, body any, out any) error {
	var err error

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	callStart := time.Now()
	resp, err := c.httpClient.Do(req)
	callDuration := time.Since(callStart)

	if err != nil {
		metrics.RecordBackendCall(operation, "error")
		metrics.RecordBackendCallDuration(operation, callDuration)
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordBackendCall(operation, "error")
		metrics.RecordBackendCallDuration(operation, callDuration)

		detail, _ := io.ReadAll(resp.Body)
		log.Debug().
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Msg("Backend request rejected")

		return &RequestError{Status: resp.StatusCode, Detail: string(detail)}
	}

	metrics.RecordBackendCall(operation, "success")
	metrics.RecordBackendCallDuration(operation, callDuration)

	if out == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

// Login authenticates and installs the returned bearer token on the client
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var result LoginResult

	payload := map[string]string{"username": username, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/login", "login", payload, &result)
	if err != nil {
		return LoginResult{}, err
	}

	c.SetToken(result.AccessToken)
	return result, nil
}

// Alerts fetches the full alert feed
func (c *Client) Alerts(ctx context.Context) ([]Alert, error) {
	var alerts []Alert
	err := c.do(ctx, http.MethodGet, "/alerts", "alerts", nil, &alerts)
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// Patients fetches the patient roster
func (c *Client) Patients(ctx context.Context) ([]Patient, error) {
	var patients []Patient
	err := c.do(ctx, http.MethodGet, "/patients", "patients", nil, &patients)
	if err != nil {
		return nil, err
	}
	return patients, nil
}

// CreatePatient registers a new patient
func (c *Client) CreatePatient(ctx context.Context, payload PatientCreate) (Patient, error) {
	var created Patient
	err := c.do(ctx, http.MethodPost, "/patients", "create_patient", payload, &created)
	if err != nil {
		return Patient{}, err
	}
	return created, nil
}

// SetPatientMonitoring flips the monitoring flag for one patient
func (c *Client) SetPatientMonitoring(ctx context.Context, patientID string, monitoring bool) (Patient, error) {
	var updated Patient
	path := fmt.Sprintf("/patients/%s/monitor?isMonitoring=%s",
		url.PathEscape(patientID), strconv.FormatBool(monitoring))
	err := c.do(ctx, http.MethodPatch, path, "patient_monitoring", nil, &updated)
	if err != nil {
		return Patient{}, err
	}
	return updated, nil
}

// Tasks fetches tasks, optionally filtered to one patient
func (c *Client) Tasks(ctx context.Context, patientID string) ([]Task, error) {
	path := "/tasks"
	if patientID != "" {
		path += "?patient_id=" + url.QueryEscape(patientID)
	}

	var tasks []Task
	err := c.do(ctx, http.MethodGet, path, "tasks", nil, &tasks)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a new task
func (c *Client) CreateTask(ctx context.Context, payload TaskCreate) (Task, error) {
	var created Task
	err := c.do(ctx, http.MethodPost, "/tasks", "create_task", payload, &created)
	if err != nil {
		return Task{}, err
	}
	return created, nil
}

// UpdateTask patches a task in place
func (c *Client) UpdateTask(ctx context.Context, taskID string, payload TaskUpdate) (Task, error) {
	var updated Task
	path := "/tasks/" + url.PathEscape(taskID)
	err := c.do(ctx, http.MethodPatch, path, "update_task", payload, &updated)
	if err != nil {
		return Task{}, err
	}
	return updated, nil
}

// Audit fetches the most recent audit-trail entries
func (c *Client) Audit(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var entries []AuditEntry
	path := "/audit?limit=" + strconv.Itoa(limit)
	err := c.do(ctx, http.MethodGet, path, "audit", nil, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// NotificationPrefs fetches the operator's notification preferences
func (c *Client) NotificationPrefs(ctx context.Context) (Preferences, error) {
	var prefs Preferences
	err := c.do(ctx, http.MethodGet, "/notifications/prefs", "get_prefs", nil, &prefs)
	if err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

// SaveNotificationPrefs overwrites the operator's notification preferences
// and returns the backend-echoed record
func (c *Client) SaveNotificationPrefs(ctx context.Context, prefs Preferences) (Preferences, error) {
	var saved Preferences
	err := c.do(ctx, http.MethodPost, "/notifications/prefs", "save_prefs", prefs, &saved)
	if err != nil {
		return Preferences{}, err
	}
	return saved, nil
}

// Simulate runs one vitals-generation and risk-scoring cycle
func (c *Client) Simulate(ctx context.Context, patientID string, risk Severity) (*SimulationResult, error) {
	if risk == "" {
		risk = SeverityNormal
	}

	var result SimulationResult
	path := fmt.Sprintf("/simulate/run?patient_id=%s&risk=%s",
		url.QueryEscape(patientID), url.QueryEscape(string(risk)))
	err := c.do(ctx, http.MethodPost, path, "simulate", nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

package console

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stealthcompany.com/sentinelcare/internal/metrics"
)

// SetupRoutes configures and returns the HTTP router for the console surface
func SetupRoutes(c *Console) *mux.Router {
	r := mux.NewRouter()

	// Add middleware to all routes
	r.Use(metrics.MetricsMiddleware)

	// Health and metrics
	r.HandleFunc("/healthz", c.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Command overview
	r.HandleFunc("/dashboard", c.DashboardHandler).Methods("GET")

	// Monitoring view
	r.HandleFunc("/monitoring", c.MonitoringHandler).Methods("GET")
	r.HandleFunc("/monitoring/simulate", c.SimulateHandler).Methods("POST")
	r.HandleFunc("/monitoring/live", c.LiveModeHandler).Methods("POST")
	r.HandleFunc("/monitoring/subject", c.SubjectHandler).Methods("POST")

	// Alert notification signal
	r.HandleFunc("/alerts/signal", c.AlertSignalHandler).Methods("GET")

	// Roster
	r.HandleFunc("/patients", c.ListPatientsHandler).Methods("GET")
	r.HandleFunc("/patients", c.CreatePatientHandler).Methods("POST")
	r.HandleFunc("/patients/{id}/monitor", c.ToggleMonitoringHandler).Methods("PATCH")
	r.HandleFunc("/tasks", c.ListTasksHandler).Methods("GET")
	r.HandleFunc("/tasks", c.CreateTaskHandler).Methods("POST")
	r.HandleFunc("/tasks/{id}", c.UpdateTaskHandler).Methods("PATCH")

	// Audit trail passthrough
	r.HandleFunc("/audit", c.AuditHandler).Methods("GET")

	// Notification preferences
	r.HandleFunc("/prefs", c.GetPrefsHandler).Methods("GET")
	r.HandleFunc("/prefs", c.SavePrefsHandler).Methods("POST")

	// Local history
	r.HandleFunc("/history/signals", c.HistorySignalsHandler).Methods("GET")
	r.HandleFunc("/history/cycles", c.HistoryCyclesHandler).Methods("GET")

	return r
}

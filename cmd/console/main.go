package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/sentinelcare/internal/alertwatch"
	"stealthcompany.com/sentinelcare/internal/archive"
	"stealthcompany.com/sentinelcare/internal/backend"
	"stealthcompany.com/sentinelcare/internal/console"
	"stealthcompany.com/sentinelcare/internal/metrics"
	"stealthcompany.com/sentinelcare/internal/monitor"
	"stealthcompany.com/sentinelcare/internal/prefs"
	"stealthcompany.com/sentinelcare/internal/roster"
	"stealthcompany.com/sentinelcare/pkg/logging"
)

func main() {
	// Load .env file if present
	err := godotenv.Load(".env")
	if err != nil {
		log.Info().Msg("Not found .env file, assuming environment variables are set")
	}

	// Get configuration from environment
	backendURL := getEnvOrDefault("BACKEND_URL", "http://localhost:8000")
	backendEmail := os.Getenv("BACKEND_EMAIL")
	backendPassword := os.Getenv("BACKEND_PASSWORD")
	consolePort := getEnvOrDefault("CONSOLE_PORT", "8080")
	logLevel := getEnvOrDefault("CONSOLE_LOG_LEVEL", "info")
	elasticsearchURL := os.Getenv("ELASTICSEARCH_URL")
	archiveDSN := os.Getenv("ARCHIVE_DSN")
	pollInterval := getDurationOrDefault("ALERT_POLL_INTERVAL", 8*time.Second)
	flashDuration := getDurationOrDefault("ALERT_FLASH_DURATION", 2*time.Second)
	liveInterval := getDurationOrDefault("LIVE_SIMULATE_INTERVAL", 5*time.Second)

	// Initialize zerolog
	logging.SetAppName("sentinelcare-console")
	if err := logging.Startup(elasticsearchURL, "logs", logLevel); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	log.Info().Msg("Starting sentinelcare-console service")

	// Start system metrics collection
	metrics.StartSystemMetricsCollection("sentinelcare-console")

	// Initialize backend client
	client := backend.NewClient(backendURL, 30*time.Second)

	if backendEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		login, err := client.Login(ctx, backendEmail, backendPassword)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to authenticate against backend")
		}
		log.Info().Str("role", login.Role).Msg("Authenticated against backend")
	} else {
		log.Warn().Msg("BACKEND_EMAIL not set, running without a session token")
	}

	// Open the local history archive; the console runs without it if
	// the database cannot be opened
	var store *archive.Store
	if archiveDSN != "" {
		store, err = archive.Open(archiveDSN)
		if err == nil {
			err = store.Init(context.Background())
		}
		if err != nil {
			log.Warn().Err(err).Msg("History archive unavailable, continuing without it")
			store = nil
		}
	}

	// Wire the monitoring session and its live-mode scheduler
	session := monitor.NewSession(client)
	scheduler := monitor.NewScheduler(session, liveInterval)

	// Wire the alert poller
	poller := alertwatch.NewPoller(client, pollInterval, flashDuration)
	if store != nil {
		session.SetRecorder(store)
		poller.SetRecorder(store)
	}

	c := &console.Console{
		Roster:    roster.New(client),
		Session:   session,
		Scheduler: scheduler,
		Poller:    poller,
		Prefs:     prefs.New(client),
		Alerts:    client,
		Audit:     client,
		Archive:   store,
	}

	// Start polling for alerts
	pollCtx, pollCancel := context.WithCancel(context.Background())
	defer pollCancel()
	poller.Start(pollCtx)

	// Setup routes
	router := console.SetupRoutes(c)

	// Create HTTP server
	server := &http.Server{
		Addr:    ":" + consolePort,
		Handler: router,
	}

	// Listen for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Info().
			Str("port", consolePort).
			Msg("Server starting")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().
				Err(err).
				Msg("Failed to start server")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Shutdown server with timeout
	shutdownTimeout := 30 * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	// Stop background loops
	log.Info().Msg("Stopping background loops...")
	scheduler.Disable()
	poller.Stop()

	// Close the history archive
	if store != nil {
		log.Info().Msg("Closing history archive...")
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close history archive")
		}
	}

	log.Info().Msg("Console service shutdown complete")
}

// Helper function to get environment variable with default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Helper function to parse a duration environment variable with default
func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("Invalid duration, using default")
		return defaultValue
	}
	return parsed
}

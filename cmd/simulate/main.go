package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/sentinelcare/internal/backend"
	"stealthcompany.com/sentinelcare/internal/vitals"
	"stealthcompany.com/sentinelcare/pkg/logging"
)

// One-shot simulation cycle for a single patient, useful for smoke-testing
// the backend without running the full console.
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Info().Msg("Not found .env file, assuming environment variables are set")
	}

	logging.SetAppName("sentinelcare-simulate")
	if err := logging.Startup("", "logs", getEnvOrDefault("CONSOLE_LOG_LEVEL", "info")); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	patientID := os.Getenv("SIMULATE_PATIENT_ID")
	if patientID == "" {
		log.Fatal().Msg("SIMULATE_PATIENT_ID is required")
	}
	risk := backend.Severity(getEnvOrDefault("SIMULATE_RISK", string(backend.SeverityNormal)))

	client := backend.NewClient(getEnvOrDefault("BACKEND_URL", "http://localhost:8000"), 30*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if email := os.Getenv("BACKEND_EMAIL"); email != "" {
		if _, err := client.Login(ctx, email, os.Getenv("BACKEND_PASSWORD")); err != nil {
			log.Fatal().Err(err).Msg("Failed to authenticate against backend")
		}
	}

	log.Info().Str("patient_id", patientID).Str("risk", string(risk)).Msg("Running simulation cycle")

	result, err := client.Simulate(ctx, patientID, risk)
	if err != nil {
		log.Fatal().Err(err).Msg("Simulation cycle failed")
	}

	for _, metric := range vitals.Derived(result) {
		line := fmt.Sprintf("%-22s %s", metric.Label, metric.Value)
		if metric.Extra != "" {
			line += " (" + metric.Extra + ")"
		}
		fmt.Println(line)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

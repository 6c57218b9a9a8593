package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Facility sizing is fixed at startup;
// nothing here is mutable afterwards.
type Config struct {
	Port            string
	Environment     string
	SlotCount       int
	WaitCapacity    int
	MaxVehicles     int
	FeePerHour      int64
	OTelServiceName string
	OTelEndpoint    string
}

// Load reads configuration from the environment, after best-effort loading
// a local .env file. Missing keys fall back to the documented defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:            envOr("APP_PORT", "8080"),
		Environment:     envOr("APP_ENV", "development"),
		SlotCount:       envOrInt("SLOT_COUNT", 10),
		WaitCapacity:    envOrInt("WAIT_CAPACITY", 10),
		MaxVehicles:     envOrInt("MAX_VEHICLES", 100),
		FeePerHour:      int64(envOrInt("FEE_PER_HOUR", 50)),
		OTelServiceName: envOr("OTEL_SERVICE_NAME", "smart-parking"),
		OTelEndpoint:    envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

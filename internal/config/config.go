package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Feed URLs default to the public open-data endpoints the pipeline was built
// against. They stay configurable so mock servers can stand in during tests.
const (
	defaultCitiesURL = "https://geo.api.gouv.fr/communes"
	defaultParisURL  = "https://opendata.paris.fr/api/explore/v2.1/catalog/datasets/velib-disponibilite-en-temps-reel/exports/json"
	defaultNantesURL = "https://data.nantesmetropole.fr/api/explore/v2.1/catalog/datasets/244400404_stations-velos-libre-service-nantes-metropole-disponibilites/records?limit=20"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DuckDBPath string
	RawDataDir string

	CitiesURL string
	ParisURL  string
	NantesURL string

	FetchTimeout    time.Duration
	FetchMaxElapsed time.Duration

	MetricsAddr     string // empty disables the metrics HTTP server
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	RunDate time.Time // zero means "today"
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	fetchMaxElapsed, err := parseDuration("FETCH_MAX_ELAPSED", "1m")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	var runDate time.Time
	if s := os.Getenv("RUN_DATE"); s != "" {
		runDate, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("invalid RUN_DATE: %w", err)
		}
	}

	cfg := &Config{
		DuckDBPath: envOrDefault("DUCKDB_PATH", "data/duckdb/mobility_analysis.duckdb"),
		RawDataDir: envOrDefault("RAW_DATA_DIR", "data/raw_data"),

		CitiesURL: envOrDefault("CITIES_URL", defaultCitiesURL),
		ParisURL:  envOrDefault("PARIS_URL", defaultParisURL),
		NantesURL: envOrDefault("NANTES_URL", defaultNantesURL),

		FetchTimeout:    fetchTimeout,
		FetchMaxElapsed: fetchMaxElapsed,

		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RunDate: runDate,
	}

	if cfg.DuckDBPath == "" {
		return nil, errors.New("DUCKDB_PATH is required")
	}
	if cfg.RawDataDir == "" {
		return nil, errors.New("RAW_DATA_DIR is required")
	}
	if cfg.CitiesURL == "" || cfg.ParisURL == "" || cfg.NantesURL == "" {
		return nil, errors.New("feed URLs must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

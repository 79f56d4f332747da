package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/duckdb/mobility_analysis.duckdb", cfg.DuckDBPath)
	assert.Equal(t, "data/raw_data", cfg.RawDataDir)
	assert.Equal(t, defaultCitiesURL, cfg.CitiesURL)
	assert.Equal(t, defaultParisURL, cfg.ParisURL)
	assert.Equal(t, defaultNantesURL, cfg.NantesURL)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, time.Minute, cfg.FetchMaxElapsed)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.RunDate.IsZero())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DUCKDB_PATH", "/tmp/test.duckdb")
	t.Setenv("RAW_DATA_DIR", "/tmp/raw")
	t.Setenv("CITIES_URL", "http://localhost:9000/cities")
	t.Setenv("PARIS_URL", "http://localhost:9000/paris")
	t.Setenv("NANTES_URL", "http://localhost:9000/nantes")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("FETCH_MAX_ELAPSED", "30s")
	t.Setenv("METRICS_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("RUN_DATE", "2024-04-26")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.duckdb", cfg.DuckDBPath)
	assert.Equal(t, "/tmp/raw", cfg.RawDataDir)
	assert.Equal(t, "http://localhost:9000/cities", cfg.CitiesURL)
	assert.Equal(t, "http://localhost:9000/paris", cfg.ParisURL)
	assert.Equal(t, "http://localhost:9000/nantes", cfg.NantesURL)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 30*time.Second, cfg.FetchMaxElapsed)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC), cfg.RunDate)
}

func TestLoad_InvalidFetchTimeout(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidRunDate(t *testing.T) {
	t.Setenv("RUN_DATE", "26/04/2024")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUN_DATE")
}

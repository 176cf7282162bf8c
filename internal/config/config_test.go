package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "PORT", "")
	setEnv(t, "MONTE_CARLO_TRIALS", "")
	setEnv(t, "TEXTGEN_TIMEOUT_MS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, DefaultTextGenModel, cfg.TextGenModel)
	assert.Equal(t, DefaultMonteCarloTrials, cfg.MonteCarloTrials)
	assert.Equal(t, 10*time.Second, cfg.TextGenTimeout)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "PORT", "9090")
	setEnv(t, "ENV", "production")
	setEnv(t, "MONTE_CARLO_TRIALS", "5000")
	setEnv(t, "TEXTGEN_TIMEOUT_MS", "2500")
	setEnv(t, "OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 5000, cfg.MonteCarloTrials)
	assert.Equal(t, 2500*time.Millisecond, cfg.TextGenTimeout)
	assert.True(t, cfg.TracingEnabled)
}

func TestLoad_TrialFloorRejected(t *testing.T) {
	setEnv(t, "MONTE_CARLO_TRIALS", "50")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MONTE_CARLO_TRIALS")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid",
			config:  Config{MonteCarloTrials: 1000, TextGenTimeout: time.Second},
			wantErr: false,
		},
		{
			name:    "trials below floor",
			config:  Config{MonteCarloTrials: 99, TextGenTimeout: time.Second},
			wantErr: true,
		},
		{
			name:    "non-positive timeout",
			config:  Config{MonteCarloTrials: 1000, TextGenTimeout: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

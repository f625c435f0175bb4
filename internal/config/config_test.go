package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.SampleInterval)
	assert.Equal(t, 3*time.Minute, cfg.IdleThreshold)
	assert.Equal(t, "Local", cfg.Timezone)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, filepath.IsAbs(cfg.DatabasePath))
	assert.True(t, filepath.IsAbs(cfg.SpoolDir))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database_path: /tmp/focus-test.db
sample_interval: 5s
idle_threshold: 90s
timezone: UTC
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/focus-test.db", cfg.DatabasePath)
	assert.Equal(t, 5*time.Second, cfg.SampleInterval)
	assert.Equal(t, 90*time.Second, cfg.IdleThreshold)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.SampleInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"zero interval", func(c *Config) { c.SampleInterval = 0 }, true},
		{"idle below interval", func(c *Config) {
			c.SampleInterval = 10 * time.Second
			c.IdleThreshold = 5 * time.Second
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIntervalSeconds(t *testing.T) {
	cfg := &Config{SampleInterval: 2 * time.Second}
	assert.Equal(t, 2, cfg.IntervalSeconds())

	cfg.SampleInterval = 500 * time.Millisecond
	assert.Equal(t, 1, cfg.IntervalSeconds())
}

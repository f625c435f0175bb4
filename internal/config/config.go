package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the runtime configuration for the tracker and its store.
// Values come from an optional YAML file, overridden by environment
// variables, overridden by CLI flags.
type Config struct {
	DatabasePath   string        `yaml:"database_path" env:"FOCUS_DB_PATH" env-default:"~/.go-focus-monitor/focus.db"`
	SpoolDir       string        `yaml:"spool_dir" env:"FOCUS_SPOOL_DIR" env-default:"~/.go-focus-monitor/spool"`
	SampleInterval time.Duration `yaml:"sample_interval" env:"FOCUS_SAMPLE_INTERVAL" env-default:"2s"`
	IdleThreshold  time.Duration `yaml:"idle_threshold" env:"FOCUS_IDLE_THRESHOLD" env-default:"3m"`
	Timezone       string        `yaml:"timezone" env:"FOCUS_TIMEZONE" env-default:"Local"`
	LogLevel       string        `yaml:"log_level" env:"FOCUS_LOG_LEVEL" env-default:"info"`
	LogFile        string        `yaml:"log_file" env:"FOCUS_LOG_FILE" env-default:"~/.go-focus-monitor/logs/app.log"`
}

// Load reads configuration from the given YAML file if it exists, then
// applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			cfg.expandPaths()
			return &cfg, cfg.Validate()
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from environment: %w", err)
	}
	cfg.expandPaths()
	return &cfg, cfg.Validate()
}

// Validate checks the invariants the tracker depends on.
func (c *Config) Validate() error {
	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample_interval must be positive, got %s", c.SampleInterval)
	}
	if c.IdleThreshold < c.SampleInterval {
		return fmt.Errorf("idle_threshold (%s) must be at least one sample_interval (%s)", c.IdleThreshold, c.SampleInterval)
	}
	return nil
}

// IntervalSeconds returns the sampling interval as whole seconds, the unit
// activity durations are accounted in.
func (c *Config) IntervalSeconds() int {
	secs := int(c.SampleInterval / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (c *Config) expandPaths() {
	c.DatabasePath = ExpandPath(c.DatabasePath)
	c.SpoolDir = ExpandPath(c.SpoolDir)
	c.LogFile = ExpandPath(c.LogFile)
}

// ExpandPath resolves a leading ~/ against the user home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

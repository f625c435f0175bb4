package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/penwyp/go-focus-monitor/internal/config"
	"github.com/penwyp/go-focus-monitor/internal/presentation/formatter"
	"github.com/penwyp/go-focus-monitor/internal/store"
	"github.com/penwyp/go-focus-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Configuration
	configPath string
	dbPath     string
	timezone   string

	// Output related
	outputFormat string

	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "go-focus-monitor",
		Short: "Window-activity time tracker",
		Long: `go-focus-monitor records which application/window you are working in,
merges samples into usage sessions, and classifies them into projects
using pattern-matching rules.

Examples:
  go-focus-monitor track                               # Run the sampling daemon
  go-focus-monitor report day                          # Today's per-app breakdown
  go-focus-monitor report day --date 2026-08-27 -o json
  go-focus-monitor brand add "Acme"                    # Create a brand
  go-focus-monitor project add "Website" --brand Acme  # Create a project under it
  go-focus-monitor rule add --project 3 --type url-domain --pattern acme.com
  go-focus-monitor classify                            # Auto-assign unclassified activity
  go-focus-monitor suggest                             # Propose projects from unassigned data`,
		SilenceUsage:      true,
		PersistentPreRunE: initRuntime,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(),
		"Configuration file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "",
		"Database file path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "",
		"Timezone setting (e.g., Asia/Shanghai, UTC; overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, csv, summary)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
}

// initRuntime loads configuration and brings up logging and the time
// provider before any subcommand runs. Flags override config fields.
func initRuntime(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	if dbPath != "" {
		cfg.DatabasePath = config.ExpandPath(dbPath)
	}
	if timezone != "" {
		cfg.Timezone = timezone
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	if err := ensureDir(filepath.Dir(cfg.LogFile)); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	util.InitLogger(cfg.LogLevel, cfg.LogFile, debug)

	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return err
	}
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func defaultConfigPath() string {
	return config.ExpandPath("~/.go-focus-monitor/config.yml")
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// openStore opens the configured database, creating its directory if needed.
func openStore() (*store.Store, error) {
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return store.Open(cfg.DatabasePath)
}

func newFormatter() (*formatter.Formatter, error) {
	return formatter.New(outputFormat)
}

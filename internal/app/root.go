package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	dbPath       string
	dataDir      string
	sourceKind   string
	postgresDSN  string
	cacheBackend string
	logLevel     string
	logFormat    string
	metricsFile  string

	// RootCmd is the root command for jobskills
	RootCmd = &cobra.Command{
		Use:   "jobskills",
		Short: "Job posting and skill demand summaries",
		Long: `jobskills aggregates job postings and the skills they list into
precomputed summary tables, then answers dashboard questions from them:
which skills a role asks for, what it pays per month, how demand moves over
time and where the jobs are.

Summaries are built once and kept in a local SQLite database. Queries build
any missing summary on first use; 'jobskills materialize --force' or
'jobskills watch' rebuild them after the source data changes.

Quick Start:
  1. jobskills materialize --data-dir ./data
  2. jobskills intro
  3. jobskills top-skills --role "Data Analyst"

Examples:
  # Salary by role for May
  jobskills salary --month 5

  # Daily demand for the top 3 skills of a role
  jobskills demand --role "Data Engineer" --skills 3

  # Rebuild summaries whenever the CSV files change
  jobskills watch --daemon

  # Show what is materialized
  jobskills status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	// Global flags
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/jobskills/config.yaml)")
	pf.StringVar(&dbPath, "db", "", "database path (default: ~/.jobskills/jobskills.db)")
	pf.StringVar(&dataDir, "data-dir", "", "directory holding the source CSV files")
	pf.StringVar(&sourceKind, "source", "", "raw data source: csv or postgres")
	pf.StringVar(&postgresDSN, "postgres-dsn", "", "postgres connection string for --source postgres")
	pf.StringVar(&cacheBackend, "cache", "", "query cache backend: lru, redis or none")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(materializeCmd)
	RootCmd.AddCommand(topSkillsCmd)
	RootCmd.AddCommand(salaryCmd)
	RootCmd.AddCommand(demandCmd)
	RootCmd.AddCommand(countriesCmd)
	RootCmd.AddCommand(introCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(dropCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// stateDir returns ~/.jobskills, creating it if needed.
func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".jobskills")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create jobskills directory: %w", err)
	}
	return dir, nil
}

// getDefaultPIDFile returns the default PID file path
func getDefaultPIDFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the default log file path
func getDefaultLogFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}

package app

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "jobskills" {
		t.Errorf("expected Use to be 'jobskills', got '%s'", RootCmd.Use)
	}
	if RootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}
	if !strings.Contains(RootCmd.Long, "Quick Start") {
		t.Error("expected Long description to contain 'Quick Start' section")
	}
	// demand is bucketed per posting day
	if !strings.Contains(RootCmd.Long, "Daily demand") || strings.Contains(RootCmd.Long, "Weekly") {
		t.Error("expected Long description to describe demand as daily")
	}
	if !RootCmd.SilenceUsage || !RootCmd.SilenceErrors {
		t.Error("expected SilenceUsage and SilenceErrors to be true")
	}
	if RootCmd.SuggestionsMinimumDistance != 2 {
		t.Errorf("SuggestionsMinimumDistance = %d, want 2", RootCmd.SuggestionsMinimumDistance)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		found[cmd.Name()] = true
	}

	expected := []string{"materialize", "top-skills", "salary", "demand", "countries", "intro", "status", "drop", "watch"}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected command '%s' to be registered", name)
		}
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "db", "data-dir", "source", "postgres-dsn", "cache", "log-level", "log-format", "metrics-file"} {
		flag := RootCmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Errorf("expected --%s flag to be registered", name)
			continue
		}
		if flag.Usage == "" {
			t.Errorf("expected --%s flag to have usage text", name)
		}
	}
}

func TestRootCmd_BareInvocationShowsHelp(t *testing.T) {
	testEnv(t)

	out, err := execute(t)
	if err != nil {
		t.Fatalf("bare invocation returned error: %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected help output to contain 'Usage:', got: %s", out)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	testEnv(t)

	_, err := execute(t, "blorp")
	if err == nil {
		t.Fatal("expected an error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected error to contain 'unknown command', got: %v", err)
	}
}

func TestGetDefaultPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	pid, err := getDefaultPIDFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, ".jobskills", "watch.pid"); pid != want {
		t.Errorf("getDefaultPIDFile() = %s, want %s", pid, want)
	}

	logFile, err := getDefaultLogFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, ".jobskills", "watch.log"); logFile != want {
		t.Errorf("getDefaultLogFile() = %s, want %s", logFile, want)
	}
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	dir, db := testEnv(t)
	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	dbPath = db
	dataDir = dir
	cacheBackend = "none"
	logFormat = "json"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.DBPath != db {
		t.Errorf("DBPath = %s, want %s", cfg.DBPath, db)
	}
	if cfg.Source.DataDir != dir {
		t.Errorf("DataDir = %s, want %s", cfg.Source.DataDir, dir)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("Cache.Backend = %s, want none", cfg.Cache.Backend)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %s, want json", cfg.Log.Format)
	}
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	testEnv(t)
	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	cacheBackend = "memcached"
	if _, err := loadConfig(); err == nil {
		t.Error("expected error for unknown cache backend")
	}
}

func TestLoadConfig_FlagCompletesEnv(t *testing.T) {
	testEnv(t)
	t.Setenv("JOBSKILLS_SOURCE_KIND", "postgres")
	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	postgresDSN = "postgres://u@localhost/db"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Source.Kind != "postgres" {
		t.Errorf("Source.Kind = %s, want postgres", cfg.Source.Kind)
	}
	if cfg.Source.PostgresDSN != postgresDSN {
		t.Errorf("Source.PostgresDSN = %s, want %s", cfg.Source.PostgresDSN, postgresDSN)
	}
}

func TestLoadConfig_EnvWithoutDSNStillRejected(t *testing.T) {
	testEnv(t)
	t.Setenv("JOBSKILLS_SOURCE_KIND", "postgres")
	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	if _, err := loadConfig(); err == nil {
		t.Error("expected error for postgres source without a DSN")
	}
}

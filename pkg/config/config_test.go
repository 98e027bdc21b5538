package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, yamlContent string) {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Change to temp directory so Load() finds config.yaml
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	writeTestConfig(t, `
port: "8084"
env: "test"
database:
  host: "db.example.com"
  port: 5432
  user: "testuser"
  database: "testdb"
`)

	os.Unsetenv("PGHOST")

	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected Port=9090 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("expected Database.Host from YAML, got %s", cfg.Database.Host)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}
}

func TestLoad_Defaults(t *testing.T) {
	writeTestConfig(t, "env: \"test\"\n")

	os.Unsetenv("PORT")
	os.Unsetenv("GATE_MAX_CONCURRENT_LOOKUPS")

	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8084" {
		t.Errorf("expected default Port=8084, got %s", cfg.Port)
	}
	if cfg.Gate.MaxConcurrentLookups != 8 {
		t.Errorf("expected default MaxConcurrentLookups=8, got %d", cfg.Gate.MaxConcurrentLookups)
	}
	if cfg.Redis.Host != "" {
		t.Errorf("expected redis disabled by default, got host %s", cfg.Redis.Host)
	}
}

func TestLoad_RejectsInvalidGateConfig(t *testing.T) {
	writeTestConfig(t, "env: \"test\"\n")

	t.Setenv("GATE_MAX_CONCURRENT_LOOKUPS", "0")

	if _, err := Load("dev"); err == nil {
		t.Fatal("expected error for zero max_concurrent_lookups, got nil")
	}
}

func TestConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "kiosco",
		Password: "secret",
		Database: "kiosco_engine",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 user=kiosco password=secret dbname=kiosco_engine sslmode=disable"
	if got := cfg.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}

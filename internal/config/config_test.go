package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.ReferenceYear != 2025 || cfg.General.TrendMonths != 6 {
		t.Errorf("General = %+v, want defaults", cfg.General)
	}
	if Exists() {
		t.Error("Exists() = true before Save")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.DataDir = "/tmp/books"
	cfg.General.ReferenceYear = 2026
	cfg.Appearance.Theme = "catppuccin-mocha"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvDataDir, "/srv/ledger")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvYear, "2024")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir() != "/srv/ledger" {
		t.Errorf("DataDir = %q", cfg.DataDir())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.General.ReferenceYear != 2024 {
		t.Errorf("ReferenceYear = %d", cfg.General.ReferenceYear)
	}
}

func TestLoad_DotEnvInConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	// Register restore, then unset so godotenv may fill it.
	t.Setenv(EnvTheme, "")
	_ = os.Unsetenv(EnvTheme)
	if err := os.MkdirAll(filepath.Join(dir, "fintrack"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fintrack", ".env"), []byte(EnvTheme+"=tokyo-night\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Appearance.Theme != "tokyo-night" {
		t.Errorf("Theme = %q, want tokyo-night from .env", cfg.Appearance.Theme)
	}
}

func TestLoad_BadYearEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvYear, "twenty")

	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric year")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg := DefaultConfig()
	cfg.General.TrendMonths = 13
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "TrendMonths") {
		t.Errorf("Validate = %v, want TrendMonths error", err)
	}

	cfg = DefaultConfig()
	cfg.Log.Level = "loud"
	if err := Validate(cfg); err == nil {
		t.Error("expected error for unknown log level")
	}
}

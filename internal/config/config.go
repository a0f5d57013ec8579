// Package config loads and saves the fintrack configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvDataDir  = "FINTRACK_DATA_DIR"
	EnvLogLevel = "FINTRACK_LOG_LEVEL"
	EnvTheme    = "FINTRACK_THEME"
	EnvYear     = "FINTRACK_YEAR"
)

// Config holds all fintrack configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir        string `toml:"data_dir,omitempty"`
	ReferenceYear  int    `toml:"reference_year" validate:"gte=1900,lte=2200"`
	TrendMonths    int    `toml:"trend_months" validate:"gte=1,lte=12"`
	CurrencySymbol string `toml:"currency_symbol"`
}

// DaemonConfig holds the background recompute service settings.
type DaemonConfig struct {
	Addr         string `toml:"addr" validate:"required,hostname_port"`
	IntervalSec  int    `toml:"interval_sec" validate:"gte=1"`
	EventsBuffer int    `toml:"events_buffer" validate:"gte=1"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			ReferenceYear:  2025,
			TrendMonths:    6,
			CurrencySymbol: "₹",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  15,
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fintrack")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultDataDir is where workbooks live when no data_dir is configured.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "fintrack")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Variables from a .env file in the working directory or config directory
// are loaded first; environment overrides are applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	if err := loadDotEnv(); err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(ConfigPath())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DataDir returns the configured workbook directory or the default.
func (c Config) DataDir() string {
	if c.General.DataDir != "" {
		return c.General.DataDir
	}
	return DefaultDataDir()
}

var validate = validator.New()

// Validate checks value ranges of the loaded configuration.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func loadDotEnv() error {
	for _, path := range []string{".env", filepath.Join(ConfigDir(), ".env")} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.General.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Appearance.Theme = v
	}
	if v := os.Getenv(EnvYear); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvYear, err)
		}
		cfg.General.ReferenceYear = year
	}
	return nil
}

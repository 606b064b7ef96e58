package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"keybackup/internal/domain"
)

// ConfigFilename is the optional config file inside the home directory.
const ConfigFilename = "config.yaml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home      string // state directory, e.g. $HOME/.keybackup
	LogLevel  string // debug, info, warn or error
	LogFormat string // text or json
	// Iterations is the PBKDF2 round count for new passphrase-derived
	// recovery keys. Zero means the library default.
	Iterations int
	UserID     domain.UserID
	DeviceID   domain.DeviceID
}

// fileConfig is the on-disk layout of config.yaml.
type fileConfig struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Account struct {
		UserID   string `yaml:"userId"`
		DeviceID string `yaml:"deviceId"`
	} `yaml:"account"`
	Backup struct {
		Iterations int `yaml:"iterations"`
	} `yaml:"backup"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig(home string) Config {
	return Config{Home: home, LogLevel: "info", LogFormat: "text"}
}

// LoadConfig reads home/config.yaml over the defaults, then applies
// KEYBACKUP_* environment overrides. A missing file is not an error.
func LoadConfig(home string) (Config, error) {
	cfg := DefaultConfig(home)

	data, err := os.ReadFile(filepath.Join(home, ConfigFilename))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, err
	default:
		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", ConfigFilename, err)
		}
		merge(&cfg, parsed)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be fixed up later.
func (c Config) Validate() error {
	if c.Home == "" {
		return errors.New("config: home directory is required")
	}
	if c.Iterations < 0 {
		return fmt.Errorf("config: iterations must not be negative, got %d", c.Iterations)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// Save writes the account and backup settings to home/config.yaml.
func (c Config) Save() error {
	var fc fileConfig
	fc.Log.Level = c.LogLevel
	fc.Log.Format = c.LogFormat
	fc.Account.UserID = c.UserID.String()
	fc.Account.DeviceID = c.DeviceID.String()
	fc.Backup.Iterations = c.Iterations

	data, err := yaml.Marshal(fc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.Home, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Home, ConfigFilename), data, 0o600)
}

func merge(dst *Config, src fileConfig) {
	if src.Log.Level != "" {
		dst.LogLevel = src.Log.Level
	}
	if src.Log.Format != "" {
		dst.LogFormat = src.Log.Format
	}
	if src.Account.UserID != "" {
		dst.UserID = domain.UserID(src.Account.UserID)
	}
	if src.Account.DeviceID != "" {
		dst.DeviceID = domain.DeviceID(src.Account.DeviceID)
	}
	if src.Backup.Iterations != 0 {
		dst.Iterations = src.Backup.Iterations
	}
}

func applyEnvOverrides(cfg *Config) error {
	if level := strings.TrimSpace(os.Getenv("KEYBACKUP_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}
	if format := strings.TrimSpace(os.Getenv("KEYBACKUP_LOG_FORMAT")); format != "" {
		cfg.LogFormat = format
	}
	raw := strings.TrimSpace(os.Getenv("KEYBACKUP_ITERATIONS"))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("KEYBACKUP_ITERATIONS: %w", err)
	}
	cfg.Iterations = n
	return nil
}

// Package config loads geodr settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

// ConfigFileEnv names the environment variable pointing at the optional
// settings file.
const ConfigFileEnv = "GEODR_CONFIG"

// ErrNoSubscription is returned by RequireSubscription when no subscription
// is configured.
var ErrNoSubscription = errors.New("AZURE_SUBSCRIPTION_ID is not set")

// Settings are the process-wide settings. Environment variables override
// values from the file.
type Settings struct {
	SubscriptionID string `yaml:"subscription_id" env:"AZURE_SUBSCRIPTION_ID" env-description:"Azure subscription that scopes every operation"`
	StateDir       string `yaml:"state_dir" env:"GEODR_STATE_DIR" env-description:"Directory holding the run journal (default $XDG_STATE_HOME/geodr)"`
	LogVerbosity   int    `yaml:"log_verbosity" env:"GEODR_LOG_VERBOSITY" env-default:"0" env-description:"Log verbosity, 1 shows poll attempts"`
	Output         string `yaml:"output" env:"GEODR_OUTPUT" env-default:"table" env-description:"Default output format: table, yaml or json"`
}

// Load reads settings from path when it is non-empty, otherwise from
// GEODR_CONFIG when set, and finally from the environment alone.
func Load(path string) (Settings, error) {
	var s Settings

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}

	if path != "" {
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return s, fmt.Errorf("failed to read config from %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&s); err != nil {
			return s, fmt.Errorf("failed to read config from environment: %w", err)
		}
	}

	if s.StateDir == "" {
		dir, err := defaultStateDir()
		if err != nil {
			return s, err
		}
		s.StateDir = dir
	}

	return s, s.Validate()
}

// Validate checks settings that every command relies on.
func (s *Settings) Validate() error {
	if s.LogVerbosity < 0 {
		return fmt.Errorf("log_verbosity cannot be negative")
	}
	if s.StateDir == "" {
		return fmt.Errorf("state_dir cannot be empty")
	}
	return nil
}

// RequireSubscription returns ErrNoSubscription unless a subscription is set.
// Only commands that call Azure need one.
func (s *Settings) RequireSubscription() error {
	if s.SubscriptionID == "" {
		return ErrNoSubscription
	}
	return nil
}

// Usage describes every setting and its environment variable.
func Usage() string {
	var s Settings
	usage, _ := cleanenv.GetDescription(&s, nil)
	return usage
}

func defaultStateDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "geodr"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve state directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "geodr"), nil
}

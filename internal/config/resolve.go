package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	APIKey    string
	AccountID string
	BaseURL   string
	// Profile names the stored profile the settings started from, if any.
	Profile string
}

// Overrides are command-line values; non-empty fields win over everything.
type Overrides struct {
	APIKey    string
	AccountID string
	BaseURL   string
	Profile   string
}

// ResolveClientConfig layers the stored profile, then SIFT_* environment
// variables, then overrides. A missing profile is not an error as long as an
// API key turns up in a later layer.
func ResolveClientConfig(o Overrides) (ClientConfig, error) {
	var cfg ClientConfig

	name := strings.TrimSpace(o.Profile)
	var (
		profile Profile
		err     error
	)
	if name != "" {
		profile, err = LoadProfile(name)
	} else {
		name, profile, err = LoadActiveProfile()
	}
	switch {
	case err == nil:
		cfg = ClientConfig{
			APIKey:    profile.APIKey,
			AccountID: profile.AccountID,
			BaseURL:   profile.BaseURL,
			Profile:   name,
		}
	case errors.Is(err, ErrNotConfigured):
		if o.Profile != "" {
			return ClientConfig{}, fmt.Errorf("profile %q not found", o.Profile)
		}
	default:
		// Env and flags can still supply everything; only fail if they don't.
		if firstNonBlankEnv(EnvAPIKey) == "" && o.APIKey == "" {
			return ClientConfig{}, err
		}
	}

	if v := firstNonBlankEnv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := firstNonBlankEnv(EnvAccountID); v != "" {
		cfg.AccountID = v
	}
	if v := firstNonBlankEnv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}

	if o.APIKey != "" {
		cfg.APIKey = o.APIKey
	}
	if o.AccountID != "" {
		cfg.AccountID = o.AccountID
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	if cfg.APIKey == "" {
		return ClientConfig{}, ErrNotConfigured
	}
	return cfg, nil
}

// DefaultEnvFile is ~/.sift/.env, or "" when the home directory is unknown.
func DefaultEnvFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".sift", ".env")
}

// LoadDefaultEnvFile loads DefaultEnvFile into the process environment.
// Variables already set are never overridden; a missing file is ignored.
func LoadDefaultEnvFile() {
	path := DefaultEnvFile()
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// ReadEnvFile parses an env file without touching the process environment.
func ReadEnvFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %q: %w", path, err)
	}
	return vars, nil
}

// ProfileFromEnvFile builds a profile from SIFT_* entries in vars and copies
// keyring runtime settings into the process environment when unset there.
func ProfileFromEnvFile(vars map[string]string) (Profile, error) {
	for _, key := range RuntimeEnvKeys {
		if v, ok := vars[key]; ok {
			if _, set := os.LookupEnv(key); !set {
				_ = os.Setenv(key, v)
			}
		}
	}
	p := Profile{
		APIKey:    strings.TrimSpace(vars[EnvAPIKey]),
		AccountID: strings.TrimSpace(vars[EnvAccountID]),
		BaseURL:   strings.TrimSuffix(strings.TrimSpace(vars[EnvBaseURL]), "/"),
	}
	if p.APIKey == "" {
		return Profile{}, fmt.Errorf("env file does not set %s", EnvAPIKey)
	}
	return p, nil
}

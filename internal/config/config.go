// Package config collects the LibCal connection settings from the environment.
//
// Values come from environment variables, optionally seeded from a .env file. Command
// line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/teemow/libfinder/internal/instrumentation"
	"github.com/teemow/libfinder/internal/libcal"
	"github.com/teemow/libfinder/internal/library"
)

// Environment variables. The unprefixed names are accepted as fallbacks.
const (
	EnvClientID      = "LIBCAL_CLIENT_ID"
	EnvClientSecret  = "LIBCAL_CLIENT_SECRET"
	EnvBaseURL       = "LIBCAL_API_URL"
	EnvTimeout       = "LIBCAL_TIMEOUT"
	EnvLibrariesFile = "LIBCAL_LIBRARIES_FILE"

	fallbackClientID     = "CLIENT_ID"
	fallbackClientSecret = "CLIENT_SECRET"
)

// DefaultEnvFile is loaded by Load when no file is named.
const DefaultEnvFile = ".env"

// ErrMissingCredentials is returned by Validate when the client id or secret is unset.
var ErrMissingCredentials = errors.New("LIBCAL_CLIENT_ID and LIBCAL_CLIENT_SECRET must be set")

// Config holds the settings needed to talk to LibCal.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration

	// LibrariesFile is a YAML library table. Empty selects the built-in table.
	LibrariesFile string
}

// Load reads the given .env files (DefaultEnvFile when none are named) into the process
// environment and returns FromEnv. Variables already set are not overridden. A missing
// default file is not an error; a missing named file is.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	return FromEnv()
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		ClientID:      firstEnv(EnvClientID, fallbackClientID),
		ClientSecret:  firstEnv(EnvClientSecret, fallbackClientSecret),
		BaseURL:       firstEnv(EnvBaseURL),
		LibrariesFile: firstEnv(EnvLibrariesFile),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = libcal.DefaultBaseURL
	}

	cfg.Timeout = libcal.DefaultTimeout
	if v := firstEnv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks that the settings are usable for API calls.
func (c Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrMissingCredentials
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Directory loads the library table named by LibrariesFile, or the built-in table.
func (c Config) Directory() (*library.Directory, error) {
	if c.LibrariesFile == "" {
		return library.Default(), nil
	}
	dir, err := library.Load(c.LibrariesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load libraries from %s: %w", c.LibrariesFile, err)
	}
	return dir, nil
}

// ClientConfig returns the libcal client settings for this configuration.
func (c Config) ClientConfig(logger *slog.Logger, metrics *instrumentation.Metrics) libcal.Config {
	return libcal.Config{
		BaseURL:      c.BaseURL,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Timeout:      c.Timeout,
		Logger:       logger,
		Metrics:      metrics,
	}
}

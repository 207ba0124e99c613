// Package config loads Dudel settings from the environment.
//
// Values come from process environment variables. Load first reads
// .env.local and then .env from the working directory, if present; variables
// already set in the environment are never overridden, and .env.local wins
// over .env.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ironsheep/dudel/internal/generation"
)

// Environment variable names.
const (
	EnvFalKey         = "FAL_KEY"
	EnvQueueURL       = "FAL_QUEUE_URL"
	EnvAddr           = "DUDEL_ADDR"
	EnvLogLevel       = "DUDEL_LOG_LEVEL"
	EnvRequestTimeout = "DUDEL_REQUEST_TIMEOUT"
	EnvMaxAttempts    = "DUDEL_MAX_ATTEMPTS"
	EnvBaseDelay      = "DUDEL_BASE_DELAY"
	EnvDelayStep      = "DUDEL_DELAY_STEP"
	EnvAllowPrivate   = "DUDEL_ALLOW_PRIVATE_RESULT_URLS"
	EnvGenerateURL    = "DUDEL_GENERATE_URL"
)

// DefaultEnvFiles are read by Load, in priority order.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Config holds runtime settings.
type Config struct {
	FalKey       string
	QueueBaseURL string
	ListenAddr   string
	LogLevel     slog.Level
	// RequestTimeout bounds one /api/generate request, polling included.
	RequestTimeout time.Duration
	Retry          generation.RetryPolicy
	// AllowPrivateResultURLs lets the result fetch reach loopback and
	// private addresses. Only for local testing against a fake queue.
	AllowPrivateResultURLs bool
	// GenerateURL, when set, makes the MCP editor generate through a remote
	// Dudel server instead of calling the vendor directly.
	GenerateURL string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		QueueBaseURL:   generation.DefaultBaseURL,
		ListenAddr:     ":3000",
		LogLevel:       slog.LevelInfo,
		RequestTimeout: 2 * time.Minute,
		Retry:          generation.DefaultRetryPolicy(),
	}
}

// Load reads the env files and then the environment.
func Load() (Config, error) {
	if err := LoadEnvFiles(DefaultEnvFiles...); err != nil {
		return Config{}, err
	}
	return FromEnv(os.Getenv)
}

// LoadEnvFiles loads each file into the process environment without
// overriding existing variables. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv builds a Config from getenv, starting from Default.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	cfg.FalKey = strings.TrimSpace(getenv(EnvFalKey))
	if v := getenv(EnvQueueURL); v != "" {
		cfg.QueueBaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv(EnvAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvLogLevel, err))
		}
	}
	cfg.GenerateURL = getenv(EnvGenerateURL)

	duration := func(name string, dst *time.Duration) {
		v := getenv(name)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", name, v))
			return
		}
		*dst = d
	}
	duration(EnvRequestTimeout, &cfg.RequestTimeout)
	duration(EnvBaseDelay, &cfg.Retry.BaseDelay)
	duration(EnvDelayStep, &cfg.Retry.Step)

	if v := getenv(EnvMaxAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, fmt.Errorf("%s: must be a positive integer, got %q", EnvMaxAttempts, v))
		} else {
			cfg.Retry.MaxAttempts = n
		}
	}
	if v := getenv(EnvAllowPrivate); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvAllowPrivate, err))
		} else {
			cfg.AllowPrivateResultURLs = b
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

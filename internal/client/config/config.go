package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/ewaste/internal/common"
)

// S3Config describes the S3-compatible bucket used for listing images.
// An empty Bucket disables uploads.
type S3Config struct {
	Bucket        string `env:"BUCKET"`
	Region        string `env:"REGION"`
	Endpoint      string `env:"ENDPOINT"`
	AccessKey     string `env:"ACCESS_KEY"`
	SecretKey     string `env:"SECRET_KEY"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

// Config holds runtime settings for the e-waste CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the marketplace REST API.
//   - RequestTimeout: per-request HTTP timeout.
//   - StorageDSN: SQLite DSN of the local key/value store (session data).
//   - KeyPrefix: namespace for persisted session keys.
//   - LogLevel, LogBackend: diagnostics written to stderr.
//   - OTPResendCooldown: how long the user waits before requesting a new code.
//   - S3: listing image storage.
type Config struct {
	ServerBaseURL     string        `env:"EWASTE_SERVER_URL"`
	RequestTimeout    time.Duration `env:"EWASTE_REQUEST_TIMEOUT"`
	StorageDSN        string        `env:"EWASTE_STORAGE_DSN"`
	KeyPrefix         string        `env:"EWASTE_KEY_PREFIX"`
	LogLevel          string        `env:"EWASTE_LOG_LEVEL"`
	LogBackend        string        `env:"EWASTE_LOG_BACKEND"`
	OTPResendCooldown time.Duration `env:"EWASTE_OTP_RESEND_COOLDOWN"`
	S3                S3Config      `envPrefix:"EWASTE_S3_"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 30 * time.Second
	c.StorageDSN = "ewaste.db"
	c.KeyPrefix = common.DefaultKeyPrefix
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.OTPResendCooldown = 60 * time.Second
	c.S3.Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables (optionally seeded from a dotenv
// file) and command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

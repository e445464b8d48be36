package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/ewaste/internal/flagx"
	"github.com/dmitrijs2005/ewaste/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "30s" or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL     string         `json:"server_base_url"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	StorageDSN        string         `json:"storage_dsn"`
	KeyPrefix         string         `json:"key_prefix"`
	LogLevel          string         `json:"log_level"`
	LogBackend        string         `json:"log_backend"`
	OTPResendCooldown timex.Duration `json:"otp_resend_cooldown"`
	S3                struct {
		Bucket        string `json:"bucket"`
		Region        string `json:"region"`
		Endpoint      string `json:"endpoint"`
		AccessKey     string `json:"access_key"`
		SecretKey     string `json:"secret_key"`
		PublicBaseURL string `json:"public_base_url"`
	} `json:"s3"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// Fields absent from the file keep their current values.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerBaseURL, jc.ServerBaseURL)
	setString(&cfg.StorageDSN, jc.StorageDSN)
	setString(&cfg.KeyPrefix, jc.KeyPrefix)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OTPResendCooldown.Duration > 0 {
		cfg.OTPResendCooldown = jc.OTPResendCooldown.Duration
	}

	setString(&cfg.S3.Bucket, jc.S3.Bucket)
	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.Endpoint, jc.S3.Endpoint)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	setString(&cfg.S3.PublicBaseURL, jc.S3.PublicBaseURL)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Package config loads runtime configuration for the e-waste CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables (EWASTE_*), optionally seeded from a dotenv file
//     given with -e/-env or ./.env.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the marketplace API
//	-d string   SQLite DSN of the local store
//	-p string   persisted key prefix
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
// Durations accept strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "https://api.example.org",
//	  "request_timeout": "30s",
//	  "storage_dsn": "ewaste.db",
//	  "key_prefix": "ewaste",
//	  "log_level": "info",
//	  "log_backend": "slog",
//	  "otp_resend_cooldown": "60s",
//	  "s3": {"bucket": "listings", "endpoint": "http://127.0.0.1:9000"}
//	}
//
// # Environment
//
//	EWASTE_SERVER_URL, EWASTE_REQUEST_TIMEOUT, EWASTE_STORAGE_DSN,
//	EWASTE_KEY_PREFIX, EWASTE_LOG_LEVEL, EWASTE_LOG_BACKEND,
//	EWASTE_OTP_RESEND_COOLDOWN, EWASTE_S3_BUCKET, EWASTE_S3_REGION,
//	EWASTE_S3_ENDPOINT, EWASTE_S3_ACCESS_KEY, EWASTE_S3_SECRET_KEY,
//	EWASTE_S3_PUBLIC_BASE_URL
package config

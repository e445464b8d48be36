package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/ewaste/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the marketplace API
//	-d string   SQLite DSN of the local store
//	-p string   persisted key prefix
//	-t int      request timeout in seconds
//	-l string   log level
//
// A timeout from an earlier source is kept unless -t is given.
//
// The function filters args with flagx.FilterArgs so flags owned by other
// loaders (-c, -e) do not interfere.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-a", "-d", "-p", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the marketplace API")
	fs.StringVar(&cfg.StorageDSN, "d", cfg.StorageDSN, "SQLite DSN of the local store")
	fs.StringVar(&cfg.KeyPrefix, "p", cfg.KeyPrefix, "persisted key prefix")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(filtered); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}

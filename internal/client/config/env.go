package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/dmitrijs2005/ewaste/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with EWASTE_* environment variables. A dotenv file
// named by -e/-env is loaded first (it must exist); otherwise ./.env is loaded
// when present. Variables already set in the process environment win over
// dotenv values.
func parseEnv(cfg *Config, args []string) error {
	if path := flagx.EnvFileFlag(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	envPrefix     = "PLAYMATCH_"
	envConfigFile = "PLAYMATCH_CONFIG"
	envDotFile    = "PLAYMATCH_ENV_FILE"

	// Unprefixed names honored as fallbacks.
	envGeminiKey   = "GEMINI_API_KEY"
	envGeminiModel = "GEMINI_MODEL"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  0. a .env file (PLAYMATCH_ENV_FILE, default ./.env) fills unset env vars
//  1. defaults (New())
//  2. file (YAML) if PLAYMATCH_CONFIG is set
//  3. env (prefix PLAYMATCH_)
//  4. GEMINI_API_KEY / GEMINI_MODEL when the prefixed keys are unset
func Load(_ context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// PLAYMATCH_ORACLE_TIMEOUT_MS -> oracle_timeout_ms (flat keys, underscores kept).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv(envGeminiKey)
	}
	if !k.Exists("gemini_model") {
		if m := os.Getenv(envGeminiModel); m != "" {
			cfg.GeminiModel = m
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the rest of the process relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !strings.HasPrefix(c.RoutePrefix, "/"):
		return fmt.Errorf("%w: route_prefix must start with /", ErrInvalidConfig)
	case strings.HasSuffix(c.RoutePrefix, "/") && c.RoutePrefix != "/":
		return fmt.Errorf("%w: route_prefix must not end with /", ErrInvalidConfig)
	case c.OracleTimeoutMS <= 0:
		return fmt.Errorf("%w: oracle_timeout_ms must be positive", ErrInvalidConfig)
	case strings.TrimSpace(c.GeminiModel) == "":
		return fmt.Errorf("%w: gemini_model must not be empty", ErrInvalidConfig)
	}
	return nil
}

// loadDotEnv populates unset env vars from a dotenv file. A missing default
// file is fine; a missing explicitly named file is not.
func loadDotEnv() error {
	path, explicit := os.LookupEnv(envDotFile)
	if !explicit || path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrLoadConfig, err)
}

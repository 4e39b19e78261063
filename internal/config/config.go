// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config holding every default.
// - Load layers defaults, an optional YAML file and PLAYMATCH_* env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RoutePrefix is mounted before /family/{family_id}.
	RoutePrefix string `koanf:"route_prefix"`

	// DatabaseURL selects the Postgres store when set; otherwise the
	// in-memory store is used.
	DatabaseURL string `koanf:"database_url"`

	// FamilyKeyColumn is the family column holding the family id.
	FamilyKeyColumn string `koanf:"family_key_column"`

	// TeamOrderColumn orders teams in Postgres, e.g. "created_at". Empty
	// keeps table order.
	TeamOrderColumn string `koanf:"team_order_column"`

	// SeedFile is a YAML fixture loaded into the in-memory store.
	SeedFile string `koanf:"seed_file"`

	// GeminiAPIKey is the ranking oracle credential. Requests fail with 500
	// while it is empty.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// GeminiModel names the generation model.
	GeminiModel string `koanf:"gemini_model"`

	// GeminiBaseURL overrides the Gemini endpoint (proxies, tests).
	GeminiBaseURL string `koanf:"gemini_base_url"`

	// OracleTimeoutMS bounds a single ranking oracle call.
	OracleTimeoutMS int `koanf:"oracle_timeout_ms"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		RoutePrefix:     "/api/recommendations",
		FamilyKeyColumn: "parent_id",
		GeminiModel:     "gemini-2.0-flash",
		OracleTimeoutMS: 20_000,
	}
}

// OracleTimeout returns OracleTimeoutMS as a duration.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.OracleTimeoutMS) * time.Millisecond
}

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/playmatch/internal/adapters/oracle/gemini"
	repository "github.com/okian/playmatch/internal/adapters/repository"
	service "github.com/okian/playmatch/internal/app"
	"github.com/okian/playmatch/internal/config"
	"github.com/okian/playmatch/internal/domain/ranking"
	"github.com/okian/playmatch/pkg/logger"
)

// setup initializes logging on w and loads configuration.
func setup(ctx context.Context, w io.Writer) (*config.Config, error) {
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	// Load configuration (dotenv -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithWriter(w), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// buildStore opens Postgres when a database URL is configured and falls back
// to the in-memory store, optionally seeded from a YAML fixture.
func buildStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.DatabaseURL != "" {
		store, err := repository.NewPostgresStore(ctx, cfg.DatabaseURL,
			repository.WithFamilyKeyColumn(cfg.FamilyKeyColumn),
			repository.WithTeamOrderColumn(cfg.TeamOrderColumn),
		)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	var opts []repository.Option
	if cfg.SeedFile != "" {
		seed, err := repository.LoadSeed(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, repository.WithSeed(seed))
	}
	logger.Get().Warn(ctx, "database_url not set; using in-memory store", logger.String("seed_file", cfg.SeedFile))
	store, err := repository.NewMemoryStore(opts...)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// buildRanker returns nil without an API key so the service reports the
// oracle as unconfigured instead of failing at startup.
func buildRanker(ctx context.Context, cfg *config.Config) (ranking.Ranker, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, nil
	}
	opts := []gemini.Option{
		gemini.WithModel(cfg.GeminiModel),
		gemini.WithTimeout(cfg.OracleTimeout()),
	}
	if cfg.GeminiBaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.GeminiBaseURL))
	}
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// buildService wires the store and ranker into a started Service.
func buildService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	ranker, err := buildRanker(ctx, cfg)
	if err != nil {
		if c, ok := store.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, fmt.Errorf("create ranking oracle: %w", err)
	}

	svc := service.New(
		service.WithLogger(logger.Get()),
		service.WithStore(store),
		service.WithRanker(ranker),
		service.WithOracleTimeout(cfg.OracleTimeout()),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}
	return svc, nil
}

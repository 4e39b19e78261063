package smoke

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/playmatch/internal/domain/types"
	"github.com/okian/playmatch/pkg/logger"
)

const (
	defaultRepeat      = 2
	defaultConcurrency = 4
	defaultTimeout     = 2 * time.Minute
)

// ErrNoFamilies is returned when the run has nothing to request.
var ErrNoFamilies = errors.New("no family ids given")

type outcome struct {
	res types.Recommendation
	err error
}

// Run executes the complete smoke test. Request failures are recorded in
// the report; only setup failures are returned as errors.
func Run(ctx context.Context, cfg Config, rec Recommender) (Report, error) {
	if len(cfg.Families) == 0 {
		return Report{}, ErrNoFamilies
	}
	if cfg.Repeat <= 0 {
		cfg.Repeat = defaultRepeat
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	log := logger.Named("smoke")
	log.Info(ctx, "starting smoke run",
		logger.Strings("families", cfg.Families),
		logger.Int("repeat", cfg.Repeat),
		logger.Int("concurrency", cfg.Concurrency),
	)
	start := time.Now()

	// Step 1: Check service health
	if err := rec.Healthy(ctx); err != nil {
		return Report{}, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Request every family Repeat times
	var (
		mu       sync.Mutex
		outcomes = make(map[string][]outcome, len(cfg.Families))
	)
	g := new(errgroup.Group)
	g.SetLimit(cfg.Concurrency)
	for _, id := range cfg.Families {
		for range cfg.Repeat {
			g.Go(func() error {
				res, err := rec.Recommend(ctx, id)
				mu.Lock()
				outcomes[id] = append(outcomes[id], outcome{res: res, err: err})
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	// Step 3: Verify results
	report := Report{Duration: time.Since(start)}
	for _, id := range cfg.Families {
		fr := verifyFamily(id, outcomes[id])
		report.Requests += fr.Runs
		report.Failures += fr.Failures
		report.Families = append(report.Families, fr)
		if !fr.Consistent {
			log.Warn(ctx, "inconsistent recommendations", logger.String("familyID", id))
		}
	}

	log.Info(ctx, "smoke run finished",
		logger.Int("requests", report.Requests),
		logger.Int("failures", report.Failures),
		logger.Duration("elapsed", report.Duration),
	)
	return report, nil
}

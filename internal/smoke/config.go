// Package smoke exercises a running recommendation server: it checks health,
// requests recommendations for a set of families concurrently and verifies
// that repeated requests agree.
package smoke

import (
	"context"
	"time"

	"github.com/okian/playmatch/internal/domain/types"
)

// Config holds configuration for a smoke run.
type Config struct {
	Families    []string      // Family ids to request
	Repeat      int           // Requests per family
	Concurrency int           // Maximum in-flight requests
	Timeout     time.Duration // Overall run timeout
}

// Recommender is the server surface a smoke run needs.
type Recommender interface {
	Healthy(ctx context.Context) error
	Recommend(ctx context.Context, familyID string) (types.Recommendation, error)
}

// FamilyReport summarizes the runs for one family.
type FamilyReport struct {
	FamilyID   string
	Runs       int
	Failures   int
	LastError  error
	SchoolIDs  []string
	TeamID     *string
	Reason     string
	Consistent bool
}

// Report holds the outcome of a smoke run.
type Report struct {
	Families []FamilyReport
	Requests int
	Failures int
	Duration time.Duration
}

// OK reports whether every request succeeded and every family was consistent.
func (r Report) OK() bool {
	if r.Failures > 0 {
		return false
	}
	for _, f := range r.Families {
		if !f.Consistent {
			return false
		}
	}
	return true
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	repository "github.com/okian/playmatch/internal/adapters/repository"
	"github.com/okian/playmatch/internal/domain/model"
	"github.com/okian/playmatch/internal/domain/ranking"
	"github.com/okian/playmatch/internal/domain/types"
	"github.com/okian/playmatch/pkg/logger"
	"github.com/okian/playmatch/pkg/metrics"
)

// ReasonNoSchools is reported when there is nothing to rank.
const ReasonNoSchools = "No schools in DB"

// Result is the outcome of one recommendation run.
type Result = types.Recommendation

// Recommend ranks the candidate schools for a family, assigns a team from
// the top school and returns the ranked school records.
//
// Only a missing oracle, an unknown family (repository.ErrFamilyNotFound)
// and store read failures are returned as errors. Oracle failures fall back
// to candidate order and a failed assignment is reported through Reason.
func (s *Service) Recommend(ctx context.Context, familyID string) (Result, error) {
	start := time.Now()

	if s.ranker == nil {
		metrics.RecordRecommendation("error")
		return Result{}, ErrOracleNotConfigured
	}
	if s.store == nil {
		metrics.RecordRecommendation("error")
		return Result{}, ErrNoStore
	}
	if strings.TrimSpace(familyID) == "" {
		metrics.RecordRecommendation("not_found")
		return Result{}, ErrEmptyFamilyID
	}
	s.requests.Add(1)

	family, err := s.store.Family(ctx, familyID)
	if err != nil {
		if errors.Is(err, repository.ErrFamilyNotFound) {
			metrics.RecordRecommendation("not_found")
			return Result{}, err
		}
		metrics.RecordRecommendation("error")
		return Result{}, fmt.Errorf("load family %s: %w", familyID, err)
	}

	schools, teams, err := s.loadCatalog(ctx)
	if err != nil {
		metrics.RecordRecommendation("error")
		return Result{}, err
	}

	if len(schools) == 0 {
		metrics.RecordRecommendation("no_schools")
		s.logger.Info(ctx, "no schools to rank", logger.String("familyID", familyID))
		return Result{
			FamilyID:        familyID,
			SchoolIDs:       []string{},
			Recommendations: []model.School{},
			Reason:          ReasonNoSchools,
		}, nil
	}

	candidates := ranking.BuildCandidates(schools, teams)
	metrics.UpdateCandidateCount(len(candidates))

	schoolIDs := s.rank(ctx, family, candidates)

	var selected *string
	if top, ok := ranking.Find(candidates, schoolIDs[0]); ok {
		selected = ranking.SelectTeam(top.Teams, family.Children.Interests())
	}

	if selected != nil {
		if err := s.store.AssignTeam(ctx, familyID, *selected); err != nil {
			s.persistenceFailures.Add(1)
			metrics.RecordPersistenceFailure()
			metrics.RecordRecommendation("persistence_failed")
			s.logger.Warn(ctx, "failed to save team assignment",
				logger.String("familyID", familyID),
				logger.String("teamID", *selected),
				logger.Error(err),
			)
			return Result{
				FamilyID:        familyID,
				SchoolIDs:       schoolIDs,
				SelectedTeamID:  nil,
				Recommendations: []model.School{{ID: schoolIDs[0]}},
				Reason:          "Failed to save team assignment: " + err.Error(),
			}, nil
		}
		s.assignments.Add(1)
		metrics.RecordTeamAssignment()
	}

	records, err := s.store.SchoolsByIDs(ctx, schoolIDs)
	if err != nil {
		metrics.RecordRecommendation("error")
		return Result{}, fmt.Errorf("load recommended schools: %w", err)
	}

	outcome := "assigned"
	if selected == nil {
		outcome = "unassigned"
	}
	metrics.RecordRecommendation(outcome)
	s.logger.Info(ctx, "recommendation complete",
		logger.String("familyID", familyID),
		logger.Strings("schoolIDs", schoolIDs),
		logger.Bool("teamAssigned", selected != nil),
		logger.Duration("elapsed", time.Since(start)),
	)

	return Result{
		FamilyID:        familyID,
		SchoolIDs:       schoolIDs,
		SelectedTeamID:  selected,
		Recommendations: inRankOrder(schoolIDs, records),
	}, nil
}

// loadCatalog reads schools and teams concurrently.
func (s *Service) loadCatalog(ctx context.Context) ([]model.School, []model.Team, error) {
	var (
		schools []model.School
		teams   []model.Team
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if schools, err = s.store.Schools(gctx); err != nil {
			return fmt.Errorf("load schools: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if teams, err = s.store.Teams(gctx); err != nil {
			return fmt.Errorf("load teams: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return schools, teams, nil
}

// rank asks the oracle for an ordering and sanitizes it. Any oracle failure
// falls back to the first candidates in load order.
func (s *Service) rank(ctx context.Context, family model.Family, candidates []ranking.Candidate) []string {
	req := ranking.NewRequest(family.Location, family.Children.Raw(), candidates)

	octx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()

	proposed, err := s.ranker.Rank(octx, req)
	if err != nil {
		reason := fallbackReason(err)
		s.fallbacks.Add(1)
		metrics.RecordOracleFallback(reason)
		s.logger.Warn(ctx, "ranking oracle failed, using candidate order",
			logger.String("familyID", family.ID),
			logger.String("reason", reason),
			logger.Error(err),
		)
		return ranking.Fallback(candidates)
	}

	if n := ranking.Unknown(proposed, candidates); n > 0 {
		metrics.RecordOracleUnknownIDs(n)
		s.logger.Debug(ctx, "oracle proposed unknown schools", logger.Int("count", n))
	}

	ids := ranking.Sanitize(proposed, candidates)
	if padded(ids, proposed) {
		metrics.RecordRankingPadded()
	}
	return ids
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ranking.ErrMalformedRanking):
		return "malformed"
	default:
		return "request"
	}
}

// padded reports whether any id was filled in from candidate order.
func padded(ids, proposed []string) bool {
	seen := make(map[string]struct{}, len(proposed))
	for _, id := range proposed {
		seen[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			return true
		}
	}
	return false
}

// inRankOrder arranges records to follow ids; ids without a record are
// dropped.
func inRankOrder(ids []string, records []model.School) []model.School {
	byID := make(map[string]model.School, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	out := make([]model.School, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

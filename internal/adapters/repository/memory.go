package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/playmatch/internal/domain/model"
	"github.com/okian/playmatch/pkg/metrics"
)

// MemoryStore is an in-memory Store that keeps rows in insertion order.
// It backs local development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	families map[string]model.Family
	schools  []model.School
	teams    []model.Team

	assignErr   error
	assignCalls int
	pendingSeed *Seed
}

// NewMemoryStore constructs an empty store, optionally seeded.
func NewMemoryStore(opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		families: make(map[string]model.Family),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.pendingSeed != nil {
		if err := s.Apply(*s.pendingSeed); err != nil {
			return nil, err
		}
		s.pendingSeed = nil
	}
	return s, nil
}

// Apply loads fixture rows, appending schools and teams after existing ones.
func (s *MemoryStore) Apply(seed Seed) error {
	families, schools, teams, err := seed.rows()
	if err != nil {
		return err
	}
	for _, f := range families {
		s.PutFamily(f)
	}
	for _, sc := range schools {
		s.PutSchool(sc)
	}
	for _, t := range teams {
		s.PutTeam(t)
	}
	return nil
}

// PutFamily inserts or replaces a family.
func (s *MemoryStore) PutFamily(f model.Family) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.families[f.ID] = f
}

// PutSchool appends a school, or replaces it in place if the id exists.
func (s *MemoryStore) PutSchool(sc model.School) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.schools {
		if s.schools[i].ID == sc.ID {
			s.schools[i] = sc
			return
		}
	}
	s.schools = append(s.schools, sc)
}

// PutTeam appends a team, or replaces it in place if the id exists.
func (s *MemoryStore) PutTeam(t model.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.teams {
		if s.teams[i].ID == t.ID {
			s.teams[i] = t
			return
		}
	}
	s.teams = append(s.teams, t)
}

// Family implements Store.
func (s *MemoryStore) Family(_ context.Context, familyID string) (model.Family, error) {
	defer observe(time.Now(), "family")

	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.families[familyID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Family{}, fmt.Errorf("%w: %s", ErrFamilyNotFound, familyID)
	}
	return f, nil
}

// Schools implements Store.
func (s *MemoryStore) Schools(_ context.Context) ([]model.School, error) {
	defer observe(time.Now(), "schools")

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.School, len(s.schools))
	copy(out, s.schools)
	return out, nil
}

// Teams implements Store.
func (s *MemoryStore) Teams(_ context.Context) ([]model.Team, error) {
	defer observe(time.Now(), "teams")

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Team, len(s.teams))
	copy(out, s.teams)
	return out, nil
}

// SchoolsByIDs implements Store. Results follow store order, not ids order.
func (s *MemoryStore) SchoolsByIDs(_ context.Context, ids []string) ([]model.School, error) {
	defer observe(time.Now(), "schools_by_ids")

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.School
	for _, sc := range s.schools {
		if _, ok := want[sc.ID]; ok {
			out = append(out, sc)
		}
	}
	return out, nil
}

// AssignTeam implements Store.
func (s *MemoryStore) AssignTeam(_ context.Context, familyID, teamID string) error {
	defer observe(time.Now(), "assign_team")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignCalls++
	if s.assignErr != nil {
		metrics.RecordErrorByComponent("repository", "assign_failed")
		return s.assignErr
	}
	f, ok := s.families[familyID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFamilyNotFound, familyID)
	}
	id := teamID
	f.TeamID = &id
	s.families[familyID] = f
	return nil
}

// AssignCalls reports how many times AssignTeam was invoked.
func (s *MemoryStore) AssignCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assignCalls
}

func observe(start time.Time, op string) {
	metrics.RecordRepositoryQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

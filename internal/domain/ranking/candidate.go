// Package ranking turns schools, teams and a family into an ordered top-3
// school recommendation and a single team assignment.
//
// The external ranking oracle is advisory: its output is always filtered
// against the candidate set and completed deterministically.
package ranking

import (
	"encoding/json"

	"github.com/okian/playmatch/internal/domain/model"
)

// Size is the number of schools a ranking holds when enough candidates exist.
const Size = 3

// TeamRef is the team view carried inside a candidate.
type TeamRef struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Sport    string `json:"sport"`
}

// Candidate is a school joined with the teams it owns.
type Candidate struct {
	SchoolID       string          `json:"school_id"`
	SchoolName     string          `json:"school_name"`
	SchoolLocation json.RawMessage `json:"school_location"`
	Teams          []TeamRef       `json:"teams"`
}

// BuildCandidates produces one candidate per school in load order. Each
// candidate lists the school's teams in the order they were loaded.
func BuildCandidates(schools []model.School, teams []model.Team) []Candidate {
	bySchool := make(map[string][]TeamRef, len(schools))
	for _, t := range teams {
		bySchool[t.SchoolID] = append(bySchool[t.SchoolID], TeamRef{
			TeamID:   t.ID,
			TeamName: t.Name,
			Sport:    t.Sport,
		})
	}

	out := make([]Candidate, 0, len(schools))
	for _, s := range schools {
		loc := s.Location
		if len(loc) == 0 {
			loc = json.RawMessage("null")
		}
		refs := bySchool[s.ID]
		if refs == nil {
			refs = []TeamRef{}
		}
		out = append(out, Candidate{
			SchoolID:       s.ID,
			SchoolName:     s.Name,
			SchoolLocation: loc,
			Teams:          refs,
		})
	}
	return out
}

// Find returns the candidate with the given school id.
func Find(candidates []Candidate, schoolID string) (Candidate, bool) {
	for _, c := range candidates {
		if c.SchoolID == schoolID {
			return c, true
		}
	}
	return Candidate{}, false
}

// Package types contains common types used across the application
package types

import "github.com/okian/playmatch/internal/domain/model"

// Recommendation is the outcome of ranking schools for one family.
type Recommendation struct {
	FamilyID        string         `json:"family_id"`
	SchoolIDs       []string       `json:"school_ids"`
	SelectedTeamID  *string        `json:"selected_team_id"`
	Recommendations []model.School `json:"recommendations"`
	// Reason explains an empty result or a team assignment that was not saved.
	Reason string `json:"reason,omitempty"`
}

// Assigned reports whether a team was recorded for the family.
func (r Recommendation) Assigned() bool { return r.SelectedTeamID != nil }

// Package model contains domain models passed between layers.
package model

import "encoding/json"

// Family is a survey-intake household looking for a team placement.
// Location and Children are semi-structured and stored as received.
type Family struct {
	ID       string          // parent/family identifier
	Location json.RawMessage // address fields (city, state, zip, ...); shape not enforced
	Children Children        // one child object or a list of children
	TeamID   *string         // current team assignment, nil when unassigned
}

// School is the record returned to clients in the recommendations list.
type School struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Location json.RawMessage `json:"location,omitempty"`
}

// Team belongs to exactly one school.
type Team struct {
	ID       string
	Name     string
	Sport    string // free text, e.g. "Ice Hockey", "Girls Basketball"
	SchoolID string
}

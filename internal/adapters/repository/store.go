// Package repository provides access to the family, school and team tables
// the recommendation pipeline reads and writes.
package repository

import (
	"context"

	"github.com/okian/playmatch/internal/domain/model"
)

// Store is the data access collaborator of the recommendation pipeline.
type Store interface {
	// Family loads a family by id.
	// Returns ErrFamilyNotFound if no row matches.
	Family(ctx context.Context, familyID string) (model.Family, error)

	// Schools returns every school in load order.
	Schools(ctx context.Context) ([]model.School, error)

	// Teams returns every team in load order.
	Teams(ctx context.Context) ([]model.Team, error)

	// SchoolsByIDs fetches the given schools in one batched query. The
	// result order is unspecified and unknown ids are simply absent.
	SchoolsByIDs(ctx context.Context, ids []string) ([]model.School, error)

	// AssignTeam records teamID as the family's team. Concurrent calls for
	// the same family race and the last write wins.
	AssignTeam(ctx context.Context, familyID, teamID string) error
}

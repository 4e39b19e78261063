package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/playmatch/internal/domain/model"
	"github.com/okian/playmatch/pkg/metrics"
)

// Default family key column in the Supabase schema.
const defaultFamilyKey = "parent_id"

// PostgresStore is a Store over the Supabase Postgres tables.
//
// Semi-structured columns are read through to_jsonb so that jsonb and text
// columns both arrive as JSON documents. Ids are compared as text, which
// works for uuid and integer keys alike.
type PostgresStore struct {
	pool      *pgxpool.Pool
	familyKey string
	teamOrder string
}

// NewPostgresStore connects to Postgres and verifies the connection.
func NewPostgresStore(ctx context.Context, connString string, opts ...PostgresOption) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, familyKey: defaultFamilyKey}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Family implements Store.
func (s *PostgresStore) Family(ctx context.Context, familyID string) (model.Family, error) {
	defer observe(time.Now(), "family")

	key := pgx.Identifier{s.familyKey}.Sanitize()
	query := `
		SELECT ` + key + `::text, to_jsonb(location), to_jsonb(children), team_id::text
		FROM family
		WHERE ` + key + `::text = $1
		LIMIT 1
	`

	var (
		f        model.Family
		children []byte
	)
	err := s.pool.QueryRow(ctx, query, familyID).Scan(&f.ID, &f.Location, &children, &f.TeamID)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Family{}, fmt.Errorf("%w: %s", ErrFamilyNotFound, familyID)
	}
	if err != nil {
		return model.Family{}, fmt.Errorf("%w: load family: %w", ErrQuery, err)
	}
	f.Children = model.ParseChildren(children)
	return f, nil
}

// Schools implements Store. Rows are ordered by id so that the load order,
// and with it the fallback ranking, is stable between requests.
func (s *PostgresStore) Schools(ctx context.Context) ([]model.School, error) {
	defer observe(time.Now(), "schools")

	query := `
		SELECT id::text, coalesce(name, ''), to_jsonb(location)
		FROM school
		ORDER BY id
	`
	return s.querySchools(ctx, query)
}

// Teams implements Store. Teams keep the order the table returns them in,
// which is insertion order for a table that only gains rows, unless an
// order column is configured.
func (s *PostgresStore) Teams(ctx context.Context) ([]model.Team, error) {
	defer observe(time.Now(), "teams")

	rows, err := s.pool.Query(ctx, teamsQuery(s.teamOrder))
	if err != nil {
		return nil, fmt.Errorf("%w: load teams: %w", ErrQuery, err)
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Sport, &t.SchoolID); err != nil {
			return nil, fmt.Errorf("%w: scan team: %w", ErrQuery, err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load teams: %w", ErrQuery, err)
	}
	return teams, nil
}

// teamsQuery selects every team, ordered by orderColumn when one is given.
func teamsQuery(orderColumn string) string {
	query := `SELECT team_id::text, coalesce(team_name, ''), coalesce(sport, ''), coalesce(school_id::text, '') FROM team`
	if orderColumn == "" {
		return query
	}
	return query + ` ORDER BY ` + pgx.Identifier{orderColumn}.Sanitize() + `, team_id`
}

// SchoolsByIDs implements Store with a single id = ANY($1) query.
func (s *PostgresStore) SchoolsByIDs(ctx context.Context, ids []string) ([]model.School, error) {
	defer observe(time.Now(), "schools_by_ids")

	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id::text, coalesce(name, ''), to_jsonb(location)
		FROM school
		WHERE id::text = ANY($1)
	`
	return s.querySchools(ctx, query, ids)
}

// AssignTeam implements Store.
func (s *PostgresStore) AssignTeam(ctx context.Context, familyID, teamID string) error {
	defer observe(time.Now(), "assign_team")

	// team_id is copied from the team row so the column keeps its own type.
	key := pgx.Identifier{s.familyKey}.Sanitize()
	query := `
		UPDATE family AS f
		SET team_id = t.team_id
		FROM team AS t
		WHERE t.team_id::text = $1 AND f.` + key + `::text = $2
	`

	tag, err := s.pool.Exec(ctx, query, teamID, familyID)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "assign_failed")
		return fmt.Errorf("%w: assign team: %w", ErrQuery, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no family %s or team %s to assign", ErrQuery, familyID, teamID)
	}
	return nil
}

func (s *PostgresStore) querySchools(ctx context.Context, query string, args ...any) ([]model.School, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: load schools: %w", ErrQuery, err)
	}
	defer rows.Close()

	var schools []model.School
	for rows.Next() {
		var sc model.School
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Location); err != nil {
			return nil, fmt.Errorf("%w: scan school: %w", ErrQuery, err)
		}
		schools = append(schools, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load schools: %w", ErrQuery, err)
	}
	return schools, nil
}

package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithSeed preloads the store with fixture rows.
func WithSeed(seed Seed) Option {
	return func(s *MemoryStore) {
		s.pendingSeed = &seed
	}
}

// WithAssignError makes every AssignTeam call fail with err.
// Used to exercise the persistence-failure path.
func WithAssignError(err error) Option {
	return func(s *MemoryStore) {
		s.assignErr = err
	}
}

// PostgresOption applies a configuration option to the PostgresStore.
type PostgresOption func(*PostgresStore)

// WithFamilyKeyColumn sets the family column matched against the family id.
func WithFamilyKeyColumn(column string) PostgresOption {
	return func(s *PostgresStore) {
		if column != "" {
			s.familyKey = column
		}
	}
}

// WithTeamOrderColumn orders teams by column, typically a creation
// timestamp. Without it teams are read in table order.
func WithTeamOrderColumn(column string) PostgresOption {
	return func(s *PostgresStore) {
		s.teamOrder = column
	}
}

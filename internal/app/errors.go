package service

import "errors"

// Sentinel errors returned by Recommend.
var (
	// ErrOracleNotConfigured means no ranking oracle credential was provided.
	ErrOracleNotConfigured = errors.New("ranking oracle is not configured")
	// ErrNoStore means the service was built without a data store.
	ErrNoStore = errors.New("no data store configured")
	// ErrEmptyFamilyID rejects blank family ids before any lookup.
	ErrEmptyFamilyID = errors.New("family id is required")
)

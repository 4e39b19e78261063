package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrFamilyNotFound = errors.New("family not found")
	ErrQuery          = errors.New("repository query failed")
	ErrSeed           = errors.New("invalid seed data")
)

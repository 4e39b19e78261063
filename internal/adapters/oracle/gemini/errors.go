package gemini

import "errors"

// Sentinel errors for the Gemini ranking client.
var (
	ErrMissingAPIKey = errors.New("gemini api key is required")
	ErrClientInit    = errors.New("gemini client init failed")
	ErrOracleRequest = errors.New("gemini request failed")
)

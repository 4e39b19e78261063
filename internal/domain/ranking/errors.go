package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrMalformedRanking = errors.New("malformed ranking response")
	ErrEncodeRequest    = errors.New("encode ranking request failed")
)

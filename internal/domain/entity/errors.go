package entity

import "errors"

// Standard domain errors
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded: too many requests")
	ErrAPIFailure        = errors.New("affiliate api request failed")
	ErrCacheMiss         = errors.New("cache miss")
	ErrInvalidRequest    = errors.New("invalid request parameters")
)

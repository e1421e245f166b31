package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidWeek   = errors.New("week must be at least 1")
	ErrInvalidSeason = errors.New("season must be positive")
	ErrNoLeague      = errors.New("league id not configured")
	ErrRunInProgress = errors.New("a pipeline run is already in progress")
	ErrNotConfigured = errors.New("service requires a store and a source")
	ErrServiceClosed = errors.New("service is shutting down")
)

package sleeper

import "errors"

// Sentinel kinds for provider errors.
var (
	// ErrSourceUnavailable wraps every failed request: transport errors,
	// non-2xx responses, undecodable payloads and an open breaker.
	ErrSourceUnavailable = errors.New("stats source unavailable")

	// ErrNoLeague is returned by league endpoints when no league id is configured.
	ErrNoLeague = errors.New("league id not configured")

	errTransient = errors.New("transient provider failure")
)

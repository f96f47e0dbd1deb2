package session

import "errors"

var (
	// ErrFetch indicates a transient navigation, timeout or transport failure.
	ErrFetch = errors.New("fetch failed")

	// ErrChallengeDetected indicates that a bot challenge did not clear
	// within the allowed attempts.
	ErrChallengeDetected = errors.New("challenge detected")

	// ErrNotAcquired indicates use of a session before Acquire or after Release.
	ErrNotAcquired = errors.New("session not acquired")

	// ErrSearchState indicates a search URL without a usable searchQueryState.
	ErrSearchState = errors.New("invalid search state")
)

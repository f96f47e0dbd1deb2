package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Search.Validate() so
// callers can use errors.Is() while still printing a readable message.
var (
	// ErrUnknownProfile is returned when --profile names no built-in or
	// configured profile.
	ErrUnknownProfile = errors.New("unknown profile")

	// ErrInvalidProfile is returned when a profile's waits or delay bounds
	// are negative or the delay minimum exceeds its maximum.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidConsecutiveFailures is returned when the failure limit is negative.
	// Use 0 to disable the limit.
	ErrInvalidConsecutiveFailures = errors.New("invalid max consecutive failures: must be non-negative")

	// ErrInvalidRateFloor is returned when the minimum request interval is negative.
	ErrInvalidRateFloor = errors.New("invalid rate floor: must be non-negative")

	// ErrInvalidClearance is returned when the challenge clearance settings are negative.
	ErrInvalidClearance = errors.New("invalid clearance: attempts and interval must be non-negative")

	// ErrInvalidConcurrency is returned when the manifest scan concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrNoDataDir is returned when no data directory is configured.
	ErrNoDataDir = errors.New("no data directory configured")

	// ErrNoSearch is returned when the config file defines neither a search
	// URL nor search bounds.
	ErrNoSearch = errors.New("no search defined: set search.url or search.bounds in the config file")

	// ErrNoReference is returned when no reference tile is configured.
	ErrNoReference = errors.New("no reference tile: set search.reference in the config file")

	// ErrInvalidSafetyScale is returned when the safety scale is not positive.
	ErrInvalidSafetyScale = errors.New("invalid safety scale: must be positive")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)

package paginate

import (
	"errors"
	"fmt"
)

var (
	// ErrDataIntegrity indicates that the accumulated list results do not
	// cover the map results claimed for the tile.
	ErrDataIntegrity = errors.New("data integrity check failed")

	// ErrMaxPagesReached indicates that pagination was aborted at the page
	// safety bound. The partial result must not be treated as complete.
	ErrMaxPagesReached = errors.New("maximum page count reached")

	// ErrNoResults indicates that the first page carried no result payload.
	// Such a tile is not known to be empty and must be fetched again.
	ErrNoResults = errors.New("first page returned no search results")
)

// IntegrityError carries the counts behind a failed integrity check.
type IntegrityError struct {
	// Listed is the number of distinct list results after merging.
	Listed int
	// Mapped is the number of distinct map results claimed for the tile.
	Mapped int
	// Cause is the fetch failure that ended pagination early, if any.
	Cause error
}

// Error implements error.
func (e *IntegrityError) Error() string {
	msg := fmt.Sprintf("%s: %d list results for %d map results", ErrDataIntegrity, e.Listed, e.Mapped)
	if e.Cause != nil {
		msg += " (stopped early: " + e.Cause.Error() + ")"
	}
	return msg
}

// Is reports whether target is ErrDataIntegrity.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}

// Unwrap returns the fetch failure that ended pagination early.
func (e *IntegrityError) Unwrap() error {
	return e.Cause
}

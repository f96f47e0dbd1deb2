package crawler

import (
	"context"
	"errors"

	"github.com/joshuawang25532/MLLM-Housing/internal/artifact"
	"github.com/joshuawang25532/MLLM-Housing/internal/detail"
	"github.com/joshuawang25532/MLLM-Housing/internal/geo"
	"github.com/joshuawang25532/MLLM-Housing/internal/paginate"
	"github.com/joshuawang25532/MLLM-Housing/internal/session"
	"github.com/joshuawang25532/MLLM-Housing/internal/state"
)

var (
	// ErrTooManyFailures indicates that a run stopped after too many
	// consecutive unit failures.
	ErrTooManyFailures = errors.New("too many consecutive failures")

	// ErrNotSaved indicates work that finished without saving anything
	// and without confirming an empty result.
	ErrNotSaved = errors.New("unit produced no artifact")

	// ErrWorkPanic indicates that work panicked on a unit. The panic fails
	// that unit only.
	ErrWorkPanic = errors.New("unit work panicked")
)

// Failure categories reported in a Summary.
const (
	CategoryIntegrity     = "integrity"
	CategoryMaxPages      = "max_pages"
	CategoryChallenge     = "challenge"
	CategorySave          = "save"
	CategoryConfiguration = "configuration"
	CategoryParse         = "parse"
	CategoryTimeout       = "timeout"
	CategoryFetch         = "fetch"
	CategoryOther         = "other"
)

// Classify maps a unit failure to its category.
func Classify(err error) string {
	switch {
	case errors.Is(err, paginate.ErrDataIntegrity):
		return CategoryIntegrity
	case errors.Is(err, paginate.ErrMaxPagesReached):
		return CategoryMaxPages
	case errors.Is(err, session.ErrChallengeDetected), errors.Is(err, paginate.ErrChallenge):
		return CategoryChallenge
	case errors.Is(err, artifact.ErrSave), errors.Is(err, state.ErrPersist), errors.Is(err, ErrNotSaved):
		return CategorySave
	case errors.Is(err, geo.ErrConfiguration):
		return CategoryConfiguration
	case errors.Is(err, detail.ErrNoNextData), errors.Is(err, detail.ErrParse):
		return CategoryParse
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, session.ErrFetch), errors.Is(err, paginate.ErrNoResults):
		return CategoryFetch
	default:
		return CategoryOther
	}
}

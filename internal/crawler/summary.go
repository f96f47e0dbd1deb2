package crawler

import (
	"maps"
	"slices"
	"time"
)

// Summary counts the outcomes of one run.
type Summary struct {
	Phase string
	// Total is the number of units handed to the run.
	Total int
	// Skipped units were already visited before the run started.
	Skipped int
	// SkippedEmpty is the part of Skipped confirmed empty by earlier runs.
	SkippedEmpty int
	// Processed units had their work attempted.
	Processed int
	Saved     int
	Empty     int
	Failed    int
	// Listings is the number of listings stored by saved units.
	Listings int
	// Failures counts failed units by category.
	Failures map[string]int

	Started     time.Time
	Finished    time.Time
	Interrupted bool
	// StopReason is set when the run ended before every unit was attempted.
	StopReason string
}

// Elapsed returns the run duration.
func (s Summary) Elapsed() time.Duration {
	if s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}

// Remaining returns the units that were neither skipped nor attempted.
func (s Summary) Remaining() int {
	return max(s.Total-s.Skipped-s.Processed, 0)
}

// FailureCategories returns the failure categories in sorted order.
func (s Summary) FailureCategories() []string {
	return slices.Sorted(maps.Keys(s.Failures))
}

// estimateRemaining projects the time left from the average so far.
func estimateRemaining(elapsed time.Duration, done, remaining int) time.Duration {
	if done <= 0 {
		return 0
	}
	return elapsed / time.Duration(done) * time.Duration(remaining)
}

package model

// FetchStatus classifies the payload a fetch returned.
type FetchStatus int

const (
	// StatusOK means the payload carries real data.
	StatusOK FetchStatus = iota
	// StatusNoResults means the service answered without any result arrays.
	StatusNoResults
	// StatusChallenge means the service answered with a bot challenge
	// instead of data.
	StatusChallenge
)

// String returns the status name.
func (s FetchStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoResults:
		return "no_results"
	case StatusChallenge:
		return "challenge"
	default:
		return "unknown"
	}
}

package session

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// challengeMarkers are lowercase substrings that identify a bot challenge page.
var challengeMarkers = []string{
	"press and hold",
	"px-captcha",
	"access denied",
}

// DetectChallenge reports whether content looks like a bot challenge.
func DetectChallenge(content string) bool {
	lower := strings.ToLower(content)
	for _, m := range challengeMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Clearance bounds how long a challenge may take to clear.
type Clearance struct {
	// Attempts is the number of probes after the first detection.
	Attempts int
	// Interval is the wait before each probe.
	Interval time.Duration
}

// Await probes until the challenge is gone, the attempts run out or ctx
// is done. probe reports whether a challenge is still present.
func (c Clearance) Await(ctx context.Context, probe func(ctx context.Context) (bool, error)) error {
	for attempt := 1; attempt <= c.Attempts; attempt++ {
		timer := time.NewTimer(c.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		present, err := probe(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFetch, err)
		}
		if !present {
			return nil
		}
	}
	return fmt.Errorf("%w: still present after %d attempts", ErrChallengeDetected, c.Attempts)
}

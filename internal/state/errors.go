package state

import "errors"

// ErrPersist indicates that the state file could not be written.
var ErrPersist = errors.New("failed to persist crawl state")

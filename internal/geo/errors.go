package geo

import "errors"

// ErrConfiguration is returned when partitioning input is degenerate,
// for example a reference tile with non-positive size. It is fatal to the
// call and should not be retried with the same input.
var ErrConfiguration = errors.New("invalid partition configuration")

package detail

import "errors"

var (
	// ErrNoNextData indicates a page without an embedded __NEXT_DATA__ document.
	ErrNoNextData = errors.New("page has no __NEXT_DATA__")

	// ErrParse indicates a malformed embedded document.
	ErrParse = errors.New("failed to parse detail page")
)

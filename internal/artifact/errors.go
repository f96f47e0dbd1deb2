package artifact

import "errors"

var (
	// ErrSave indicates that an artifact could not be written durably.
	ErrSave = errors.New("failed to save artifact")

	// ErrManifest indicates a malformed manifest or links file.
	ErrManifest = errors.New("invalid manifest")
)

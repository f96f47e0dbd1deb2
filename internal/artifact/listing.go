package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// NullIdentifierPrefix is the file name prefix of listing artifacts saved
// without an identifier.
const NullIdentifierPrefix = "nullzpid_"

// SaveListing writes record into dir as <id>.json, or as the next free
// placeholder name when id is empty. An existing artifact for id is never
// overwritten; the result then reports Created false.
func SaveListing(dir, id string, record any) (SaveResult, error) {
	if id == "" {
		n, err := NextPlaceholder(dir)
		if err != nil {
			return SaveResult{}, fmt.Errorf("%w: %w", ErrSave, err)
		}
		return writeJSON(filepath.Join(dir, NullIdentifierPrefix+strconv.Itoa(n)+".json"), record)
	}

	path := filepath.Join(dir, id+".json")
	if _, err := os.Stat(path); err == nil {
		return SaveResult{Path: path}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return SaveResult{}, fmt.Errorf("%w: %w", ErrSave, err)
	}
	return writeJSON(path, record)
}

// NextPlaceholder returns one more than the highest placeholder number in
// dir, starting at 1.
func NextPlaceholder(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	highest := 0
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, NullIdentifierPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, NullIdentifierPrefix), ".json"))
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return highest + 1, nil
}

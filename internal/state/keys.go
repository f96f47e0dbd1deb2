package state

import (
	"path/filepath"
	"strings"

	"github.com/joshuawang25532/MLLM-Housing/internal/artifact"
	"github.com/joshuawang25532/MLLM-Housing/internal/geo"
)

// KeyFunc derives a visited key from an artifact file name. ok is false
// for files that do not identify a completed unit.
type KeyFunc func(name string) (key string, ok bool)

// TileKey maps tile artifact file names to tile keys.
func TileKey(name string) (string, bool) {
	if !geo.IsTileFileName(name) {
		return "", false
	}
	return strings.TrimSuffix(name, filepath.Ext(name)), true
}

// ListingKey maps listing artifact file names of the form <digits>.json to
// the listing identifier. Placeholder artifacts carry no stable identity
// and are never reconciled.
func ListingKey(name string) (string, bool) {
	if filepath.Ext(name) != ".json" || strings.HasPrefix(name, artifact.NullIdentifierPrefix) {
		return "", false
	}
	stem := strings.TrimSuffix(name, ".json")
	if stem == "" {
		return "", false
	}
	for _, r := range stem {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return stem, true
}

package geo

import (
	"math"
	"strconv"
	"strings"
)

// Tile is one rectangular unit of search work. Its identity is the file
// key derived from its north and west edges, not the value itself.
type Tile struct {
	Bounds Bounds
	key    string
}

// NewTile creates a Tile for b and computes its key.
func NewTile(b Bounds) Tile {
	return Tile{Bounds: b, key: TileKey(b.North, b.West)}
}

// Key returns the tile's stable identifier, for example
// "tile_37_730169051308685_long_-122_38933369885972".
func (t Tile) Key() string {
	if t.key == "" {
		return TileKey(t.Bounds.North, t.Bounds.West)
	}
	return t.key
}

// FileName returns the artifact file name for the tile.
func (t Tile) FileName() string {
	return t.Key() + ".json"
}

// TileKey derives a tile key from its north latitude and west longitude.
// The north value is split at the decimal point into integer and decimal
// parts; every point in the west value is replaced by an underscore.
func TileKey(north, west float64) string {
	intPart, decPart, found := strings.Cut(formatCoordinate(north), ".")
	if !found {
		decPart = "0"
	}
	westStr := strings.ReplaceAll(formatCoordinate(west), ".", "_")
	return "tile_" + intPart + "_" + decPart + "_long_" + westStr
}

// IsTileFileName reports whether name looks like a tile artifact.
func IsTileFileName(name string) bool {
	return strings.HasPrefix(name, "tile_") &&
		strings.Contains(name, "_long_") &&
		strings.HasSuffix(name, ".json")
}

// formatCoordinate prints f with the shortest round-trip digits, keeping a
// ".0" suffix on integral values and switching to exponent notation for
// very small or very large magnitudes.
func formatCoordinate(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

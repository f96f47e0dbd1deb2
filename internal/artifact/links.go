package artifact

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joshuawang25532/MLLM-Housing/internal/geo"
)

// LinksFile is the tile links file name.
const LinksFile = "tile_links.json"

// TileLink is one partitioned tile with the search URL that targets it.
type TileLink struct {
	Index       int        `json:"index"`
	Link        string     `json:"link"`
	Filename    string     `json:"filename"`
	Coordinates geo.Bounds `json:"coordinates"`
}

// UnitKey implements crawler.Unit.
func (l TileLink) UnitKey() string {
	return geo.TileKey(l.Coordinates.North, l.Coordinates.West)
}

// UnitURL implements crawler.Unit.
func (l TileLink) UnitURL() string { return "" }

// Tile returns the tile the link targets.
func (l TileLink) Tile() geo.Tile {
	return geo.NewTile(l.Coordinates)
}

// WriteLinks writes links to path.
func WriteLinks(path string, links []TileLink) (SaveResult, error) {
	if links == nil {
		links = []TileLink{}
	}
	return writeJSON(path, links)
}

// LoadLinks reads a tile links file. Every entry must carry valid bounds.
func LoadLinks(path string) ([]TileLink, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, err
	}
	var links []TileLink
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrManifest, path, err)
	}
	for i, l := range links {
		if err := l.Coordinates.Validate(); err != nil {
			return nil, fmt.Errorf("%w: link %d: %w", ErrManifest, i, err)
		}
	}
	return links, nil
}

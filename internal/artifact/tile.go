package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshuawang25532/MLLM-Housing/internal/geo"
	"github.com/joshuawang25532/MLLM-Housing/internal/model"
)

// SaveTile writes the merged results of tile into dir, replacing any
// previous artifact for the same tile.
func SaveTile(dir string, tile geo.Tile, batch model.ResultBatch) (SaveResult, error) {
	return writeJSON(filepath.Join(dir, tile.FileName()), batch)
}

// LoadTile reads a tile artifact.
func LoadTile(path string) (model.ResultBatch, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from a directory listing
	if err != nil {
		return model.ResultBatch{}, err
	}
	var b model.ResultBatch
	if err := json.Unmarshal(data, &b); err != nil {
		return model.ResultBatch{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return b, nil
}

package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/joshuawang25532/MLLM-Housing/internal/geo"
	"github.com/joshuawang25532/MLLM-Housing/internal/model"
)

// ManifestFile is the detail manifest file name.
const ManifestFile = "all_house_urls.json"

// ManifestStats summarizes a manifest build.
type ManifestStats struct {
	Tiles   int
	Skipped int
	Entries int
}

// BuildManifest collects one manifest entry per distinct listing across
// every tile artifact in dir.
//
// Tiles are visited in lexicographic file order and, within a tile, the
// relaxed, list and map arrays in that order; the first occurrence of an
// identifier wins. Listings without a detail URL or identifier are
// dropped. Unreadable tiles are logged and skipped. Tile files are parsed
// concurrently, with at most concurrency in flight.
func BuildManifest(ctx context.Context, dir string, concurrency int, logger *slog.Logger) ([]model.ManifestEntry, ManifestStats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ManifestStats{}, fmt.Errorf("failed to list tiles in %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && geo.IsTileFileName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	batches := make([]*model.ResultBatch, len(names))
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := LoadTile(filepath.Join(dir, name))
			if err != nil {
				logger.Warn("skipping unreadable tile", "tile", name, "error", err)
				return nil
			}
			batches[i] = &b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ManifestStats{}, err
	}

	stats := ManifestStats{Tiles: len(names)}
	seen := make(map[string]struct{})
	var out []model.ManifestEntry
	for _, b := range batches {
		if b == nil {
			stats.Skipped++
			continue
		}
		for _, group := range [][]model.Listing{b.RelaxedResults, b.ListResults, b.MapResults} {
			for _, l := range group {
				u := l.AbsoluteDetailURL()
				if u == "" {
					continue
				}
				id, ok := l.Identity()
				if !ok {
					continue
				}
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, model.ManifestEntry{ZPID: id, DetailURL: u})
			}
		}
	}
	stats.Entries = len(out)
	return out, stats, nil
}

// WriteManifest writes entries to path.
func WriteManifest(path string, entries []model.ManifestEntry) (SaveResult, error) {
	if entries == nil {
		entries = []model.ManifestEntry{}
	}
	return writeJSON(path, entries)
}

// LoadManifest reads a manifest and checks that every entry has a detail
// URL.
func LoadManifest(path string) ([]model.ManifestEntry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, err
	}
	var entries []model.ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrManifest, path, err)
	}
	for i, e := range entries {
		if e.DetailURL == "" {
			return nil, fmt.Errorf("%w: entry %d has no detailUrl", ErrManifest, i)
		}
	}
	return entries, nil
}

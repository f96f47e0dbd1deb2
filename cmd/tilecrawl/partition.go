package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuawang25532/MLLM-Housing/internal/artifact"
	"github.com/joshuawang25532/MLLM-Housing/internal/config"
	"github.com/joshuawang25532/MLLM-Housing/internal/geo"
	"github.com/joshuawang25532/MLLM-Housing/internal/session"
)

// defaultTileZoom is the mapZoom written into tile links when the config
// file does not set one.
const defaultTileZoom = 17

// NewPartitionCmd creates the partition command.
func NewPartitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Split the search region into tiles",
		Long: `Partition splits the configured search region into a grid of tiles no
larger than the reference tile and writes one search link per tile to
tile_links.json in the data directory.

The tiles command partitions on its own when no links file exists, so this
command is only needed to inspect the grid or to rebuild it after the
search region changed.

Examples:
  # Partition the region from .tilecrawl
  tilecrawl partition

  # Rebuild an existing links file
  tilecrawl partition -f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			return runCommand(cmd, func(_ context.Context, a *app) error {
				path := a.linksPath()
				if !force {
					if _, err := os.Stat(path); err == nil {
						return fmt.Errorf("tile links already exist: %s (use -f to rebuild)", path)
					}
				}
				links, err := a.partition()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %d tiles: %s\n", len(links), path)
				return nil
			})
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing tile links file")

	return cmd
}

// linksPath is the tile links file.
func (a *app) linksPath() string {
	return filepath.Join(a.cfg.DataDir, artifact.LinksFile)
}

// partition plans the tiles of the configured search and writes the links
// file.
func (a *app) partition() ([]artifact.TileLink, error) {
	links, err := planTiles(a.cfg.Search())
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(a.cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	res, err := artifact.WriteLinks(a.linksPath(), links)
	if err != nil {
		return nil, fmt.Errorf("failed to write tile links: %w", err)
	}
	a.logger.Info("search region partitioned", "tiles", len(links), "path", res.Path)
	return links, nil
}

// loadLinks reads the links file, partitioning first when there is none.
func (a *app) loadLinks() ([]artifact.TileLink, error) {
	links, err := artifact.LoadLinks(a.linksPath())
	if errors.Is(err, os.ErrNotExist) {
		return a.partition()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tile links: %w", err)
	}
	return links, nil
}

// planTiles computes the tile grid of s and one search link per tile.
func planTiles(s config.Search) ([]artifact.TileLink, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	state, err := tileSearchState(s)
	if err != nil {
		return nil, err
	}

	region, err := searchRegion(s, state)
	if err != nil {
		return nil, err
	}
	tiles, err := geo.ComputeSubtiles(region, *s.Reference, s.Scale())
	if err != nil {
		return nil, err
	}

	path, err := searchPath(s)
	if err != nil {
		return nil, err
	}

	links := make([]artifact.TileLink, 0, len(tiles))
	for i, b := range tiles {
		link, err := session.BuildURL(path, state, s.Category, &b)
		if err != nil {
			return nil, err
		}
		links = append(links, artifact.TileLink{
			Index:       i,
			Link:        link,
			Filename:    geo.NewTile(b).FileName(),
			Coordinates: b,
		})
	}
	return links, nil
}

// tileSearchState returns the search state of s at the tile zoom. Both the
// recorded tile links and the live tile searches use it.
func tileSearchState(s config.Search) (session.State, error) {
	state, err := searchState(s)
	if err != nil {
		return nil, err
	}
	zoom := s.Zoom
	if zoom <= 0 {
		zoom = defaultTileZoom
	}
	state["mapZoom"] = zoom
	return state, nil
}

// searchState returns a copy of the searchQueryState of s.URL, or a
// minimal map-and-list state when no URL is configured.
func searchState(s config.Search) (session.State, error) {
	if s.URL == "" {
		return session.State{
			"isMapVisible":  true,
			"isListVisible": true,
			"filterState":   map[string]any{},
		}, nil
	}
	state, err := session.ExtractSearchState(s.URL)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return state.Clone(), nil
}

// searchRegion returns the configured bounds, falling back to the
// mapBounds of the search URL.
func searchRegion(s config.Search, state session.State) (geo.Bounds, error) {
	if s.Bounds != nil {
		return *s.Bounds, nil
	}
	if b, ok := state.Bounds(); ok {
		return b, nil
	}
	return geo.Bounds{}, fmt.Errorf("configuration error: %w: the search URL carries no mapBounds", config.ErrNoSearch)
}

// searchPath returns the configured path or the path of the search URL.
func searchPath(s config.Search) (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}
	if s.URL == "" {
		return "", fmt.Errorf("configuration error: %w: set search.path or search.url", config.ErrNoSearch)
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("configuration error: %w", err)
	}
	if u.Path == "" {
		return "/", nil
	}
	return u.Path, nil
}

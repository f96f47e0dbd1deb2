package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuawang25532/MLLM-Housing/internal/crawler"
	"github.com/joshuawang25532/MLLM-Housing/internal/paginate"
	"github.com/joshuawang25532/MLLM-Housing/internal/state"
)

// phaseTiles is the journal phase name of the tile crawl.
const phaseTiles = "tiles"

// NewTilesCmd creates the tiles command.
func NewTilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "Search every tile and save its listings",
		Long: `Tiles searches every tile of the partitioned region page by page and
saves the listings of each completed tile as one JSON file in the results
directory.

Tiles already visited in an earlier run, or proven visited by an existing
tile file, are skipped. Tiles confirmed to hold nothing are remembered so
they are not searched again. A tile whose pages could not all be fetched is
not saved and is retried by the next run.

Examples:
  # Crawl with the monitored profile
  tilecrawl tiles

  # Crawl unattended, stopping after 5 failures in a row
  tilecrawl tiles -P overnight --max-consecutive-failures 5

  # Crawl only the next 20 pending tiles
  tilecrawl tiles -n 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, func(ctx context.Context, a *app) error {
				_, err := a.crawlTiles(ctx)
				return err
			})
		},
	}

	addMaxPagesFlag(cmd)
	addCrawlFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// tileStatePath is the visited tiles file.
func (a *app) tileStatePath() string {
	return filepath.Join(a.cfg.ResultsDir(), state.TileStateFile)
}

// crawlTiles runs the tile phase over every tile link.
func (a *app) crawlTiles(ctx context.Context) (crawler.Summary, error) {
	links, err := a.loadLinks()
	if err != nil {
		return crawler.Summary{}, err
	}

	base, err := tileSearchState(a.cfg.Search())
	if err != nil {
		return crawler.Summary{}, err
	}

	dir := a.cfg.ResultsDir()
	store, err := state.Open(a.tileStatePath(),
		state.WithLogger(a.logger),
		state.WithArtifacts(dir, state.TileKey),
	)
	if err != nil {
		return crawler.Summary{}, fmt.Errorf("failed to open tile state: %w", err)
	}

	sess := a.newSession(base)
	controller := paginate.New(
		paginate.WithMaxPages(a.cfg.MaxPages),
		paginate.WithLogger(a.logger),
	)
	tc := crawler.NewTileCrawler(sess, controller, dir, a.logger)

	return runPhase(ctx, a, phaseTiles, store, sess, links, tc.Work)
}

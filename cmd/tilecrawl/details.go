package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuawang25532/MLLM-Housing/internal/artifact"
	"github.com/joshuawang25532/MLLM-Housing/internal/crawler"
	"github.com/joshuawang25532/MLLM-Housing/internal/state"
)

// phaseDetails is the journal phase name of the detail crawl.
const phaseDetails = "details"

// NewDetailsCmd creates the details command.
func NewDetailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "details",
		Short: "Fetch every listing detail page in the manifest",
		Long: `Details visits the detail page of every manifest entry in random order
and saves the extracted listing as one JSON file in the houses directory.

Listings already visited, by identifier or by URL, are skipped. A listing
file that already exists is never overwritten.

Examples:
  # Fetch details after building the manifest
  tilecrawl manifest && tilecrawl details

  # Fetch the next 100 pending listings overnight
  tilecrawl details -P overnight -n 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, func(ctx context.Context, a *app) error {
				_, err := a.crawlDetails(ctx)
				return err
			})
		},
	}

	addCrawlFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// listingStatePath is the visited listings file.
func (a *app) listingStatePath() string {
	return filepath.Join(a.cfg.HousesDir(), state.ListingStateFile)
}

// crawlDetails runs the detail phase over the manifest.
func (a *app) crawlDetails(ctx context.Context) (crawler.Summary, error) {
	entries, err := artifact.LoadManifest(a.manifestPath())
	if errors.Is(err, os.ErrNotExist) {
		return crawler.Summary{}, fmt.Errorf("no manifest at %s (run tilecrawl manifest first)", a.manifestPath())
	}
	if err != nil {
		return crawler.Summary{}, fmt.Errorf("failed to load manifest: %w", err)
	}

	dir := a.cfg.HousesDir()
	store, err := state.Open(a.listingStatePath(),
		state.WithLogger(a.logger),
		state.WithArtifacts(dir, state.ListingKey),
	)
	if err != nil {
		return crawler.Summary{}, fmt.Errorf("failed to open listing state: %w", err)
	}

	sess := a.newSession(nil)
	dc := crawler.NewDetailCrawler(sess, dir, a.logger)

	return runPhase(ctx, a, phaseDetails, store, sess, entries, dc.Work)
}

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuawang25532/MLLM-Housing/internal/artifact"
	"github.com/joshuawang25532/MLLM-Housing/internal/config"
)

// NewManifestCmd creates the manifest command.
func NewManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Build the detail manifest from the tile files",
		Long: `Manifest reads every tile file in the results directory and writes one
entry per distinct listing, with its detail page URL, to all_house_urls.json
in the data directory.

Listings are deduplicated by identifier; the first tile (in file name order)
that holds a listing wins. Unreadable tile files are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, func(ctx context.Context, a *app) error {
				stats, err := a.buildManifest(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Manifest: %d listings from %d tiles (%d unreadable): %s\n",
					stats.Entries, stats.Tiles, stats.Skipped, a.manifestPath())
				return nil
			})
		},
	}

	cmd.Flags().Int("concurrency", config.DefaultManifestConcurrency,
		"Number of tile files read at once")

	return cmd
}

// manifestPath is the detail manifest file.
func (a *app) manifestPath() string {
	return filepath.Join(a.cfg.DataDir, artifact.ManifestFile)
}

// buildManifest collects the listings of every tile file and writes the
// manifest.
func (a *app) buildManifest(ctx context.Context) (artifact.ManifestStats, error) {
	entries, stats, err := artifact.BuildManifest(ctx, a.cfg.ResultsDir(), a.cfg.ManifestConcurrency, a.logger)
	if err != nil {
		return stats, fmt.Errorf("failed to build manifest: %w", err)
	}
	if _, err := artifact.WriteManifest(a.manifestPath(), entries); err != nil {
		return stats, fmt.Errorf("failed to write manifest: %w", err)
	}
	a.logger.Info("manifest written",
		"path", a.manifestPath(),
		"tiles", stats.Tiles,
		"skipped", stats.Skipped,
		"entries", stats.Entries,
	)
	return stats, nil
}

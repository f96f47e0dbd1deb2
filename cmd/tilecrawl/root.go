// Package main provides the entry point for the tilecrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuawang25532/MLLM-Housing/internal/config"
)

// NewRootCmd creates the root command for tilecrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tilecrawl",
		Short: "Resumable tile-partition crawler for map-based listing search",
		Long: `tilecrawl collects every listing inside a map region from a search service
that caps the number of results returned for one viewport.

The region is split into tiles sized from a reference tile, every tile
is searched page by page, and the listings found are deduplicated into a
manifest whose detail pages are fetched one by one. Progress is saved after
every unit, so an interrupted crawl resumes where it stopped.

Phases:
  partition  split the search region into tiles
  tiles      search every tile and save its listings
  manifest   build the detail manifest from the tile files
  details    fetch every listing detail page
  run        all of the above, in order`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .tilecrawl in current, XDG config or home directory)")
	cmd.PersistentFlags().StringP("profile", "P", config.DefaultProfile,
		"Throughput profile (monitored or overnight, or one defined in the config file)")
	cmd.PersistentFlags().StringP("data-dir", "d", config.XDGDataDir(),
		"Directory for artifacts, crawl state and the run journal")

	// Add subcommands
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewPartitionCmd())
	cmd.AddCommand(NewTilesCmd())
	cmd.AddCommand(NewManifestCmd())
	cmd.AddCommand(NewDetailsCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

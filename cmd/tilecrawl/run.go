package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuawang25532/MLLM-Housing/internal/config"
	"github.com/joshuawang25532/MLLM-Housing/internal/pipeline"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every phase in order",
		Long: `Run partitions the region (when no tile links exist yet), crawls the
tiles, builds the manifest and fetches the listing details, one phase after
the other. Both crawl phases share the same settings and each prints its
own summary.

A failing phase stops the pipeline unless --continue-on-error is given. An
interrupt always stops it; the next run resumes from the saved state.

Examples:
  # Crawl everything with the overnight profile
  tilecrawl run -P overnight

  # Keep going to the details even if the tile phase stopped early
  tilecrawl run --continue-on-error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			continueOnError, err := cmd.Flags().GetBool("continue-on-error")
			if err != nil {
				return err
			}
			return runCommand(cmd, func(ctx context.Context, a *app) error {
				return a.runAll(ctx, continueOnError)
			})
		},
	}

	cmd.Flags().Bool("continue-on-error", false,
		"Run the remaining phases after one fails")
	cmd.Flags().Int("concurrency", config.DefaultManifestConcurrency, "Number of tile files read at once while building the manifest")
	addMaxPagesFlag(cmd)
	addCrawlFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// newRunPipeline builds the phase pipeline of the run command.
func (a *app) newRunPipeline(continueOnError bool) *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(a.logger),
		pipeline.WithContinueOnError(continueOnError),
	)
	p.AddSteps(
		pipeline.NewStep("partition", func(_ context.Context, _ *pipeline.Run) error {
			_, err := os.Stat(a.linksPath())
			switch {
			case err == nil:
				a.logger.Info("tile links exist, skipping partition", "path", a.linksPath())
				return nil
			case !errors.Is(err, os.ErrNotExist):
				return err
			}
			_, err = a.partition()
			return err
		}),
		pipeline.NewStep(phaseTiles, func(ctx context.Context, run *pipeline.Run) error {
			sum, err := a.crawlTiles(ctx)
			run.AddSummary(sum)
			return err
		}),
		pipeline.NewStep("manifest", func(ctx context.Context, _ *pipeline.Run) error {
			_, err := a.buildManifest(ctx)
			return err
		}),
		pipeline.NewStep(phaseDetails, func(ctx context.Context, run *pipeline.Run) error {
			sum, err := a.crawlDetails(ctx)
			run.AddSummary(sum)
			return err
		}),
	)
	return p
}

// runAll executes every phase.
func (a *app) runAll(ctx context.Context, continueOnError bool) error {
	run := &pipeline.Run{}
	err := a.newRunPipeline(continueOnError).Execute(ctx, run)
	a.logger.Info("pipeline finished",
		"completed", run.Completed,
		"failures", len(run.Failures),
		"interrupted", run.Interrupted,
	)
	return err
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuawang25532/MLLM-Housing/internal/artifact"
	"github.com/joshuawang25532/MLLM-Housing/internal/config"
	"github.com/joshuawang25532/MLLM-Housing/internal/database"
	"github.com/joshuawang25532/MLLM-Housing/internal/report"
	"github.com/joshuawang25532/MLLM-Housing/internal/state"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show crawl progress and recent runs",
		Long: `Status prints how many tiles and listings have been visited, how many
are still pending, and the most recent runs recorded in the journal.

Nothing is crawled and no browser is started.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, err := cmd.Flags().GetInt("runs")
			if err != nil {
				return err
			}
			return runCommand(cmd, func(ctx context.Context, a *app) error {
				st, err := a.status(ctx, limit)
				if err != nil {
					return err
				}
				_, err = a.report.WriteStatus(st)
				return err
			})
		},
	}

	cmd.Flags().Int("runs", config.DefaultRecentRuns, "Number of recent runs to show")
	addReportFlags(cmd)

	return cmd
}

// status collects the persisted progress of both phases and the most
// recent journal runs.
func (a *app) status(ctx context.Context, runs int) (*report.StatusReport, error) {
	tiles, err := a.phaseState(phaseTiles, a.tileStatePath(), func() (int, error) {
		links, err := artifact.LoadLinks(a.linksPath())
		return len(links), err
	})
	if err != nil {
		return nil, err
	}

	details, err := a.phaseState(phaseDetails, a.listingStatePath(), func() (int, error) {
		entries, err := artifact.LoadManifest(a.manifestPath())
		return len(entries), err
	})
	if err != nil {
		return nil, err
	}

	st := &report.StatusReport{
		GeneratedAt: time.Now(),
		Phases:      []report.PhaseState{tiles, details},
	}

	st.Runs, err = a.recentRuns(ctx, runs)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// phaseState reads a state file without creating it. known returns the
// number of units the phase knows about; a missing source counts as zero.
func (a *app) phaseState(phase, path string, known func() (int, error)) (report.PhaseState, error) {
	ps := report.PhaseState{Phase: phase, StateFile: path}

	if _, err := os.Stat(path); err == nil {
		store, err := state.Open(path, state.WithLogger(a.logger))
		if err != nil {
			return ps, fmt.Errorf("failed to read %s state: %w", phase, err)
		}
		c := store.Counts()
		ps.Visited, ps.URLs, ps.Empty = c.Visited, c.URLs, c.Empty
	}

	n, err := known()
	switch {
	case err == nil:
		ps.Known = n
	case errors.Is(err, os.ErrNotExist):
	default:
		a.logger.Warn("cannot count known units", "phase", phase, "error", err)
	}
	return ps, nil
}

// recentRuns reads the journal if one exists. It never creates one.
func (a *app) recentRuns(ctx context.Context, limit int) ([]database.Run, error) {
	if limit <= 0 {
		return nil, nil
	}
	if _, err := os.Stat(filepath.Join(a.cfg.DataDir, database.FileName)); err != nil {
		return nil, nil
	}

	j, err := database.Open(a.cfg.DataDir, database.Options{EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer j.Close()

	return j.RecentRuns(ctx, limit)
}

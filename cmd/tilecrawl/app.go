package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuawang25532/MLLM-Housing/internal/config"
	"github.com/joshuawang25532/MLLM-Housing/internal/crawler"
	"github.com/joshuawang25532/MLLM-Housing/internal/database"
	applog "github.com/joshuawang25532/MLLM-Housing/internal/log"
	"github.com/joshuawang25532/MLLM-Housing/internal/report"
	"github.com/joshuawang25532/MLLM-Housing/internal/session"
)

// app carries what every command builds from its flags: the validated
// configuration, the active profile, the logger and the report writer.
type app struct {
	cfg     *config.Config
	profile config.Profile
	logger  *slog.Logger
	report  report.Writer

	journal      *database.Journal
	journalTried bool
	closers      []io.Closer
}

// newApp builds the configuration from cmd's flags and sets up logging and
// report output.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	profile, err := cfg.ActiveProfile()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewLogger(cmd.ErrOrStderr(), applog.Options{Verbose: cfg.Verbose, JSON: cfg.LogJSON})
	slog.SetDefault(logger)

	a := &app{cfg: cfg, profile: profile, logger: logger}

	out := cmd.OutOrStdout()
	if cfg.ReportFile != "" {
		f, err := openReportFile(cfg.ReportFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, f)
		out = f
	}
	a.report = newReportWriter(cfg, out)

	return a, nil
}

// Close releases the journal and the report file.
func (a *app) Close() error {
	var errs []error
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// runCommand runs fn with an app built from cmd and a context that is
// cancelled on SIGINT or SIGTERM.
func runCommand(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error("failed to close resources", "error", err)
		}
	}()

	ctx, cancel := signalContext(cmd.Context(), a.logger)
	defer cancel()

	return fn(ctx, a)
}

// signalContext returns a context that is cancelled on the first interrupt
// signal. The work in flight finishes its current unit, saves state and
// prints the summary.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, stopping after the current unit...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// useJournal opens the run journal on first use. A journal that cannot be
// opened is logged and the run continues without one.
func (a *app) useJournal() *database.Journal {
	if !a.cfg.Journal || a.journalTried {
		return a.journal
	}
	a.journalTried = true

	j, err := database.Open(a.cfg.DataDir, database.DefaultOptions())
	if err != nil {
		a.logger.Warn("run journal disabled", "error", err)
		return nil
	}
	a.journal = j
	a.logger.Debug("run journal opened", "path", j.Path())
	return j
}

// pacer builds the inter-unit pacer from the active profile.
func (a *app) pacer() *crawler.Pacer {
	return crawler.NewPacer(crawler.Delay{
		Mean:   a.profile.DelayMean,
		StdDev: a.profile.DelayStdDev,
		Min:    a.profile.DelayMin,
		Max:    a.profile.DelayMax,
	}, crawler.WithRateFloor(a.cfg.RateFloor))
}

// newSession builds the browser session. No browser starts until the
// orchestrator acquires it.
func (a *app) newSession(base session.State) *session.ChromeSession {
	b := a.cfg.Browser()
	cl := a.cfg.Clearance()
	return session.NewChromeSession(session.Options{
		ExecPath:        b.ExecPath,
		Headless:        b.Headless,
		UserAgent:       b.UserAgent,
		BaseState:       base,
		BrowserInitWait: a.profile.BrowserInitWait,
		PageLoadWait:    a.profile.PageLoadWait,
		Clearance: session.Clearance{
			Attempts: cl.Attempts,
			Interval: cl.Interval,
		},
	}, session.WithLogger(a.logger))
}

// runPhase runs work over units with the shared session, journals every
// attempt and writes the summary. The summary is written even when the run
// is interrupted or stopped early.
func runPhase[U crawler.Unit](
	ctx context.Context,
	a *app,
	phase string,
	tracker crawler.Tracker,
	sess crawler.Lifecycle,
	units []U,
	work crawler.WorkFunc[U],
) (crawler.Summary, error) {
	opts := []crawler.Option[U]{
		crawler.WithSession[U](sess),
		crawler.WithPacer[U](a.pacer()),
		crawler.WithMaxConsecutiveFailures[U](a.cfg.MaxConsecutiveFailures),
		crawler.WithLimit[U](a.cfg.Limit),
		crawler.WithLogger[U](a.logger),
	}

	var run database.Run
	journal := a.useJournal()
	if journal != nil {
		var err error
		run, err = journal.StartRun(ctx, phase, a.profile.Name, time.Now())
		if err != nil {
			a.logger.Warn("run will not be journaled", "phase", phase, "error", err)
			journal = nil
		} else {
			opts = append(opts, crawler.WithRecorder[U](journalRecorder(journal, run.ID)))
		}
	}

	a.logger.Info("starting phase",
		"phase", phase,
		"units", len(units),
		"profile", a.profile.Name,
		"run", run.ID,
	)

	sum, err := crawler.NewOrchestrator[U](phase, tracker, opts...).Run(ctx, units, work)

	if journal != nil {
		if ferr := journal.FinishRun(context.WithoutCancel(ctx), finishedRun(run, sum)); ferr != nil {
			a.logger.Error("failed to finish journal run", "run", run.ID, "error", ferr)
		}
	}

	if _, werr := a.report.Write(&report.RunReport{RunID: run.ID, Profile: a.profile.Name, Summary: sum}); werr != nil {
		a.logger.Error("report failed", "phase", phase, "error", werr)
	}

	if err != nil {
		return sum, fmt.Errorf("%s phase: %w", phase, err)
	}
	return sum, nil
}

// journalRecorder stores attempts in the journal under runID.
func journalRecorder(j *database.Journal, runID string) crawler.Recorder {
	return crawler.RecorderFunc(func(ctx context.Context, at crawler.Attempt) error {
		return j.RecordAttempt(context.WithoutCancel(ctx), database.Attempt{
			RunID:     runID,
			Phase:     at.Phase,
			UnitKey:   at.Key,
			URL:       at.URL,
			Outcome:   at.Outcome,
			Category:  at.Category,
			Error:     at.Error,
			Listings:  at.Listings,
			Pages:     at.Pages,
			Artifact:  at.Artifact,
			Hash:      at.Hash,
			StartedAt: at.Started,
			Duration:  at.Duration,
		})
	})
}

// finishedRun copies the counters of sum into run.
func finishedRun(run database.Run, sum crawler.Summary) database.Run {
	run.FinishedAt = sum.Finished
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	run.Total = sum.Total
	run.Skipped = sum.Skipped
	run.Processed = sum.Processed
	run.Saved = sum.Saved
	run.Empty = sum.Empty
	run.Failed = sum.Failed
	run.Listings = sum.Listings
	run.Interrupted = sum.Interrupted
	run.StopReason = sum.StopReason
	return run
}

// openReportFile creates the report file and its parent directories.
func openReportFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// newReportWriter selects the report format.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

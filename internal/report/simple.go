package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/joshuawang25532/MLLM-Housing/internal/database"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// SimpleWriter outputs human-readable text reports.
// Plain ASCII is used so output can be piped to files unchanged.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to show are printed.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(report *RunReport) (int, error) {
	var sb strings.Builder
	s := report.Summary

	writeRule(&sb, "=")
	sb.WriteString("FINAL SUMMARY: " + strings.ToUpper(title(s.Phase)) + "\n")
	writeRule(&sb, "=")

	if report.Profile != "" {
		sb.WriteString(fmt.Sprintf("Profile:            %s\n", title(report.Profile)))
	}
	if w.verbose && report.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run:                %s\n", report.RunID))
	}
	sb.WriteString(fmt.Sprintf("Status:             %s\n", runStatus(s.Interrupted, s.StopReason)))
	sb.WriteString(fmt.Sprintf("Units total:        %d\n", s.Total))
	sb.WriteString(fmt.Sprintf("Skipped (visited):  %d\n", s.Skipped-s.SkippedEmpty))
	if s.SkippedEmpty > 0 || w.showEmpty {
		sb.WriteString(fmt.Sprintf("Skipped (water):    %d\n", s.SkippedEmpty))
	}
	sb.WriteString(fmt.Sprintf("Processed:          %d\n", s.Processed))
	sb.WriteString(fmt.Sprintf("Saved:              %d\n", s.Saved))
	if s.Empty > 0 || w.showEmpty {
		sb.WriteString(fmt.Sprintf("Empty:              %d\n", s.Empty))
	}
	sb.WriteString(fmt.Sprintf("Failed:             %d\n", s.Failed))
	sb.WriteString(fmt.Sprintf("Listings saved:     %d\n", s.Listings))
	if remaining := s.Remaining(); remaining > 0 {
		sb.WriteString(fmt.Sprintf("Remaining:          %d\n", remaining))
	}

	elapsed := s.Elapsed()
	sb.WriteString(fmt.Sprintf("Total time:         %s (%.1f minutes)\n", formatDuration(elapsed), elapsed.Minutes()))
	if s.Processed > 0 {
		sb.WriteString(fmt.Sprintf("Average per unit:   %.1fs\n", perUnit(s).Seconds()))
	}

	if len(s.Failures) > 0 || w.showEmpty {
		sb.WriteString("\n")
		writeRule(&sb, "-")
		sb.WriteString("FAILURES BY CATEGORY\n")
		writeRule(&sb, "-")
		if len(s.Failures) == 0 {
			sb.WriteString("  none\n")
		}
		for _, category := range s.FailureCategories() {
			sb.WriteString(fmt.Sprintf("  %-14s %d\n", category, s.Failures[category]))
		}
	}

	writeRule(&sb, "=")
	return w.output.Write([]byte(sb.String()))
}

// WriteStatus outputs the crawl status in human-readable format.
func (w *SimpleWriter) WriteStatus(report *StatusReport) (int, error) {
	var sb strings.Builder

	writeRule(&sb, "=")
	sb.WriteString("CRAWL STATUS\n")
	writeRule(&sb, "=")
	if !report.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.Format(timeLayout)))
	}

	for _, p := range report.Phases {
		sb.WriteString(fmt.Sprintf("[%s]\n", title(p.Phase)))
		if w.verbose {
			sb.WriteString(fmt.Sprintf("  State file: %s\n", p.StateFile))
		}
		sb.WriteString(fmt.Sprintf("  Visited:    %d\n", p.Visited))
		if p.URLs > 0 || w.showEmpty {
			sb.WriteString(fmt.Sprintf("  URLs:       %d\n", p.URLs))
		}
		if p.Empty > 0 || w.showEmpty {
			sb.WriteString(fmt.Sprintf("  Water:      %d\n", p.Empty))
		}
		if p.Known > 0 {
			sb.WriteString(fmt.Sprintf("  Known:      %d\n", p.Known))
			sb.WriteString(fmt.Sprintf("  Pending:    %d\n", p.Pending()))
		}
		sb.WriteString("\n")
	}

	if len(report.Runs) > 0 || w.showEmpty {
		writeRule(&sb, "-")
		sb.WriteString("RECENT RUNS\n")
		writeRule(&sb, "-")
		if len(report.Runs) == 0 {
			sb.WriteString("  No runs recorded\n")
		}
		for _, r := range report.Runs {
			sb.WriteString(w.runLine(r))
		}
	}

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) runLine(r database.Run) string {
	status := "running"
	if r.Finished() {
		status = runStatus(r.Interrupted, r.StopReason)
	}
	line := fmt.Sprintf("  %s  %-8s %-10s saved=%d empty=%d failed=%d skipped=%d  %s\n",
		r.StartedAt.Format(timeLayout),
		r.Phase,
		r.Profile,
		r.Saved,
		r.Empty,
		r.Failed,
		r.Skipped,
		status,
	)
	if w.verbose {
		line += fmt.Sprintf("    id=%s\n", r.ID)
	}
	return line
}

func writeRule(sb *strings.Builder, char string) {
	sb.WriteString(strings.Repeat(char, 70))
	sb.WriteString("\n")
}

package report

import (
	"io"
	"time"

	"github.com/joshuawang25532/MLLM-Housing/internal/crawler"
	"github.com/joshuawang25532/MLLM-Housing/internal/database"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RunReport is the end-of-run summary of one phase.
type RunReport struct {
	// RunID is the journal identifier, or empty when the journal is off.
	RunID   string
	Profile string
	Summary crawler.Summary
}

// PhaseState is the persisted progress of one phase.
type PhaseState struct {
	Phase     string
	StateFile string
	Visited   int
	URLs      int
	Empty     int
	// Known is the number of units the phase knows about (tile links or
	// manifest entries), or zero if unknown.
	Known int
}

// Pending returns the units not yet visited, or zero if Known is unset.
func (p PhaseState) Pending() int {
	if p.Known == 0 {
		return 0
	}
	return max(p.Known-p.Visited, 0)
}

// StatusReport is the output of the status command.
type StatusReport struct {
	GeneratedAt time.Time
	Phases      []PhaseState
	Runs        []database.Run
}

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs a run summary.
	// Returns the number of bytes written and any error encountered.
	Write(report *RunReport) (int, error)

	// WriteStatus outputs the crawl status.
	WriteStatus(report *StatusReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteStatus outputs the status to all configured Writers.
func (m *MultiWriter) WriteStatus(report *StatusReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteStatus(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// title renders a phase or profile name for headings.
func title(s string) string {
	if s == "" {
		return "-"
	}
	return cases.Title(language.English).String(s)
}

// runStatus describes how a run ended.
func runStatus(interrupted bool, stopReason string) string {
	switch {
	case interrupted:
		return "Interrupted"
	case stopReason != "":
		return "Stopped (" + stopReason + ")"
	default:
		return "Complete"
	}
}

// formatDuration renders d rounded to the second.
func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

// perUnit returns the average time per processed unit.
func perUnit(s crawler.Summary) time.Duration {
	if s.Processed == 0 {
		return 0
	}
	return s.Elapsed() / time.Duration(s.Processed)
}

package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/joshuawang25532/MLLM-Housing/internal/database"
)

// JSONWriter outputs reports in JSON format.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type jsonRun struct {
	RunID        string         `json:"run_id,omitempty"`
	Profile      string         `json:"profile,omitempty"`
	Phase        string         `json:"phase"`
	Status       string         `json:"status"`
	Total        int            `json:"total"`
	Skipped      int            `json:"skipped"`
	SkippedEmpty int            `json:"skipped_empty"`
	Processed    int            `json:"processed"`
	Saved        int            `json:"saved"`
	Empty        int            `json:"empty"`
	Failed       int            `json:"failed"`
	Remaining    int            `json:"remaining"`
	Listings     int            `json:"listings"`
	Failures     map[string]int `json:"failures,omitempty"`
	Started      time.Time      `json:"started"`
	Finished     time.Time      `json:"finished"`
	ElapsedSec   float64        `json:"elapsed_seconds"`
}

type jsonPhase struct {
	Phase     string `json:"phase"`
	StateFile string `json:"state_file"`
	Visited   int    `json:"visited"`
	URLs      int    `json:"urls"`
	Empty     int    `json:"empty"`
	Known     int    `json:"known,omitempty"`
	Pending   int    `json:"pending,omitempty"`
}

type jsonJournalRun struct {
	ID         string    `json:"id"`
	Phase      string    `json:"phase"`
	Profile    string    `json:"profile"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Saved      int       `json:"saved"`
	Empty      int       `json:"empty"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Status     string    `json:"status"`
}

type jsonStatus struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Phases      []jsonPhase      `json:"phases"`
	Runs        []jsonJournalRun `json:"runs"`
}

// Write outputs the run summary in JSON format.
func (w *JSONWriter) Write(report *RunReport) (int, error) {
	s := report.Summary
	return w.writeJSON(jsonRun{
		RunID:        report.RunID,
		Profile:      report.Profile,
		Phase:        s.Phase,
		Status:       runStatus(s.Interrupted, s.StopReason),
		Total:        s.Total,
		Skipped:      s.Skipped,
		SkippedEmpty: s.SkippedEmpty,
		Processed:    s.Processed,
		Saved:        s.Saved,
		Empty:        s.Empty,
		Failed:       s.Failed,
		Remaining:    s.Remaining(),
		Listings:     s.Listings,
		Failures:     s.Failures,
		Started:      s.Started,
		Finished:     s.Finished,
		ElapsedSec:   s.Elapsed().Seconds(),
	})
}

// WriteStatus outputs the crawl status in JSON format.
func (w *JSONWriter) WriteStatus(report *StatusReport) (int, error) {
	out := jsonStatus{
		GeneratedAt: report.GeneratedAt,
		Phases:      make([]jsonPhase, 0, len(report.Phases)),
		Runs:        make([]jsonJournalRun, 0, len(report.Runs)),
	}
	for _, p := range report.Phases {
		out.Phases = append(out.Phases, jsonPhase{
			Phase:     p.Phase,
			StateFile: p.StateFile,
			Visited:   p.Visited,
			URLs:      p.URLs,
			Empty:     p.Empty,
			Known:     p.Known,
			Pending:   p.Pending(),
		})
	}
	for _, r := range report.Runs {
		out.Runs = append(out.Runs, journalRun(r))
	}
	return w.writeJSON(out)
}

func journalRun(r database.Run) jsonJournalRun {
	status := "running"
	if r.Finished() {
		status = runStatus(r.Interrupted, r.StopReason)
	}
	return jsonJournalRun{
		ID:         r.ID,
		Phase:      r.Phase,
		Profile:    r.Profile,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Saved:      r.Saved,
		Empty:      r.Empty,
		Failed:     r.Failed,
		Skipped:    r.Skipped,
		Status:     status,
	}
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

package report

import (
	"io"
	"strconv"

	"github.com/joshuawang25532/MLLM-Housing/internal/crawler"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(report *RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	s := report.Summary

	md.H1(title(s.Phase) + " Run Summary")
	md.PlainText("")

	rows := [][]string{
		{"Profile", title(report.Profile)},
		{"Started", s.Started.Format(timeLayout)},
		{"Elapsed", formatDuration(s.Elapsed())},
		{"Status", w.statusText(s)},
	}
	if report.RunID != "" {
		rows = append(rows, []string{"Run", "`" + report.RunID + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Units")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Total", strconv.Itoa(s.Total)},
			{"Skipped (visited)", strconv.Itoa(s.Skipped - s.SkippedEmpty)},
			{"Skipped (water)", strconv.Itoa(s.SkippedEmpty)},
			{"Saved", strconv.Itoa(s.Saved)},
			{"Empty", strconv.Itoa(s.Empty)},
			{"Failed", strconv.Itoa(s.Failed)},
			{"Remaining", strconv.Itoa(s.Remaining())},
			{"**Listings**", "**" + strconv.Itoa(s.Listings) + "**"},
		},
	})
	md.PlainText("")

	if s.Processed > 0 {
		w.writePieChart(md, s)
	}

	if len(s.Failures) > 0 {
		md.H2("Failures")
		md.PlainText("")
		failures := make([][]string, 0, len(s.Failures))
		for _, category := range s.FailureCategories() {
			failures = append(failures, []string{category, strconv.Itoa(s.Failures[category])})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Category", "Count"},
			Rows:   failures,
		})
		md.PlainText("")
	}

	w.writeAlert(md, s)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteStatus outputs the crawl status in Markdown format.
func (w *MarkdownWriter) WriteStatus(report *StatusReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Status")
	md.PlainText("")
	if !report.GeneratedAt.IsZero() {
		md.PlainTextf("Generated %s", report.GeneratedAt.Format(timeLayout))
		md.PlainText("")
	}

	phases := make([][]string, 0, len(report.Phases))
	for _, p := range report.Phases {
		known, pending := "-", "-"
		if p.Known > 0 {
			known, pending = strconv.Itoa(p.Known), strconv.Itoa(p.Pending())
		}
		phases = append(phases, []string{
			title(p.Phase),
			strconv.Itoa(p.Visited),
			strconv.Itoa(p.Empty),
			known,
			pending,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Phase", "Visited", "Water", "Known", "Pending"},
		Rows:   phases,
	})
	md.PlainText("")

	md.H2("Recent Runs")
	md.PlainText("")
	if len(report.Runs) == 0 {
		md.PlainText("No runs recorded.")
		md.PlainText("")
	} else {
		runs := make([][]string, 0, len(report.Runs))
		for _, r := range report.Runs {
			status := "Running"
			if r.Finished() {
				status = runStatus(r.Interrupted, r.StopReason)
			}
			runs = append(runs, []string{
				r.StartedAt.Format(timeLayout),
				title(r.Phase),
				title(r.Profile),
				strconv.Itoa(r.Saved),
				strconv.Itoa(r.Failed),
				status,
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Started", "Phase", "Profile", "Saved", "Failed", "Status"},
			Rows:   runs,
		})
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) statusText(s crawler.Summary) string {
	switch {
	case s.Interrupted:
		return "⚠️ Interrupted"
	case s.StopReason != "":
		return "❌ Stopped (" + s.StopReason + ")"
	default:
		return "✅ Complete"
	}
}

// writePieChart writes a mermaid pie chart of unit outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s crawler.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Unit Outcomes"),
		piechart.WithShowData(true),
	)

	if s.Saved > 0 {
		chart.LabelAndIntValue("Saved", uint64(s.Saved))
	}
	if s.Empty > 0 {
		chart.LabelAndIntValue("Empty", uint64(s.Empty))
	}
	if s.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(s.Failed))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing how the run went.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s crawler.Summary) {
	switch {
	case s.StopReason != "" && !s.Interrupted:
		md.Cautionf("Run stopped early (%s). %d unit(s) were not attempted.", s.StopReason, s.Remaining())
	case s.Interrupted:
		md.Warningf("Run interrupted. %d unit(s) remain and will be picked up by the next run.", s.Remaining())
	case s.Failed > 0:
		md.Importantf("%d unit(s) failed and will be retried by the next run.", s.Failed)
	default:
		md.Tip("Every pending unit was processed.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by tilecrawl*")
}

// Package report renders crawl run summaries and crawl status.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for terminal display
//   - MarkdownWriter: Markdown for attaching to notes or issues
//   - JSONWriter: JSON for scripts
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report

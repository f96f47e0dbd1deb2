package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/joshuawang25532/MLLM-Housing/internal/artifact"
	"github.com/joshuawang25532/MLLM-Housing/internal/detail"
	"github.com/joshuawang25532/MLLM-Housing/internal/model"
	"github.com/joshuawang25532/MLLM-Housing/internal/session"
)

// Fetcher is the part of a session the detail crawl needs.
type Fetcher interface {
	Detail(ctx context.Context, url string) (session.DetailPage, error)
}

// DetailCrawler fetches, parses and stores listing detail pages.
type DetailCrawler struct {
	fetcher Fetcher
	dir     string
	now     func() time.Time
	logger  *slog.Logger
}

// NewDetailCrawler creates a DetailCrawler that writes artifacts into dir.
func NewDetailCrawler(fetcher Fetcher, dir string, logger *slog.Logger) *DetailCrawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailCrawler{fetcher: fetcher, dir: dir, now: time.Now, logger: logger}
}

// Work is a WorkFunc for manifest entries.
func (c *DetailCrawler) Work(ctx context.Context, entry model.ManifestEntry) (Outcome, error) {
	page, err := c.fetcher.Detail(ctx, entry.DetailURL)
	if err != nil {
		return Outcome{}, err
	}
	if page.Status == model.StatusChallenge {
		return Outcome{}, fmt.Errorf("%s: %w", entry.DetailURL, session.ErrChallengeDetected)
	}

	raw, err := detail.ExtractRaw(page.HTML)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", entry.DetailURL, err)
	}
	rec, err := detail.Parse(raw, entry.DetailURL, page.FinalURL, c.now())
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", entry.DetailURL, err)
	}

	zpid := ResolveZPID(entry.ZPID, rec.Metadata.ZPID, entry.DetailURL)
	rec.Metadata.ZPID = zpid

	saved, err := artifact.SaveListing(c.dir, zpid, rec)
	if err != nil {
		return Outcome{Key: zpid}, err
	}
	if !saved.Created {
		c.logger.Info("listing artifact already exists, keeping it", "zpid", zpid, "path", saved.Path)
	}
	return Outcome{
		Saved:    true,
		Key:      zpid,
		Listings: 1,
		Artifact: saved.Path,
		Hash:     saved.Hash,
	}, nil
}

var zpidPattern = regexp.MustCompile(`(\d+)_zpid`)

// ResolveZPID picks the listing identifier from, in order, the manifest,
// the parsed page and the detail URL. It returns "" when none has one.
func ResolveZPID(manifest, parsed, url string) string {
	if id := model.NormalizeIdentifier(manifest); id != "" {
		return id
	}
	if id := model.NormalizeIdentifier(parsed); id != "" {
		return id
	}
	if m := zpidPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

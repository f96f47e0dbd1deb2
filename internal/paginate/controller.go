package paginate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuawang25532/MLLM-Housing/internal/merge"
	"github.com/joshuawang25532/MLLM-Housing/internal/model"
)

// DefaultMaxPages is the page safety bound used when none is configured.
const DefaultMaxPages = 50

// ErrChallenge is returned when the first page is answered with a bot
// challenge. Later challenges stop pagination and surface through the
// integrity check.
var ErrChallenge = errors.New("challenge returned instead of results")

// Page is the outcome of fetching one page of a tile's search.
type Page struct {
	Batch  model.ResultBatch
	Status model.FetchStatus
}

// FetchFunc fetches page n (1-based) of the tile being paginated.
type FetchFunc func(ctx context.Context, page int) (Page, error)

// Result is the outcome of paginating one tile.
type Result struct {
	// Merged is the deduplicated fold of every fetched page.
	Merged model.ResultBatch
	// TotalHouses is the number of distinct map results in Merged.
	TotalHouses int
	// Pages is the number of pages fetched successfully.
	Pages int
	// HouseCount is the map result count claimed by the first page.
	HouseCount int
	// Accumulated is the sum of list result counts over all pages,
	// before deduplication.
	Accumulated int
}

// Empty reports whether the tile was confirmed to hold no listings.
func (r Result) Empty() bool {
	return r.HouseCount == 0 && r.Accumulated == 0 && r.Merged.Empty()
}

// Controller paginates tiles.
type Controller struct {
	maxPages int
	logger   *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxPages sets the page safety bound. Non-positive values are ignored.
func WithMaxPages(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a Controller.
func New(opts ...Option) *Controller {
	c := &Controller{
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// MaxPages returns the configured page safety bound.
func (c *Controller) MaxPages() int {
	return c.maxPages
}

// Paginate fetches pages for one tile until its results are complete.
//
// The returned error is ErrMaxPagesReached when the safety bound is hit
// (the partial Result is still returned), an *IntegrityError when the
// merged list results fall short of the map results, or the fetch error
// when the very first page could not be fetched. A first page without a
// result payload is ErrNoResults; only a page that returned data with no
// listings makes a tile empty.
func (c *Controller) Paginate(ctx context.Context, tile string, fetch FetchFunc) (Result, error) {
	var (
		batches    []model.ResultBatch
		res        Result
		stopReason error
	)

	for page := 1; ; page++ {
		if page > c.maxPages {
			res.Merged = merge.Merge(batches)
			res.TotalHouses = len(res.Merged.MapResults)
			c.logger.Warn("pagination aborted",
				"tile", tile,
				"max_pages", c.maxPages,
				"accumulated", res.Accumulated,
				"house_count", res.HouseCount,
			)
			return res, fmt.Errorf("%s: %w (%d)", tile, ErrMaxPagesReached, c.maxPages)
		}

		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		p, err := fetch(ctx, page)
		if err == nil && p.Status == model.StatusChallenge {
			err = ErrChallenge
		}
		if err != nil {
			if len(batches) == 0 {
				return Result{}, fmt.Errorf("%s: page %d: %w", tile, page, err)
			}
			c.logger.Warn("pagination stopped by fetch failure",
				"tile", tile,
				"page", page,
				"error", err,
			)
			stopReason = err
			break
		}
		if p.Status == model.StatusNoResults {
			if page == 1 {
				return Result{}, fmt.Errorf("%s: %w", tile, ErrNoResults)
			}
			c.logger.Debug("no results signal", "tile", tile, "page", page)
			break
		}

		batches = append(batches, p.Batch)
		res.Pages = page
		pageCount := len(p.Batch.ListResults)
		if page == 1 {
			res.HouseCount = len(p.Batch.MapResults)
		}
		res.Accumulated += pageCount

		c.logger.Debug("page fetched",
			"tile", tile,
			"page", page,
			"listings", pageCount,
			"accumulated", res.Accumulated,
			"house_count", res.HouseCount,
		)

		if res.Accumulated >= res.HouseCount {
			break
		}
		if page > 1 && pageCount == 0 {
			break
		}
	}

	res.Merged = merge.Merge(batches)
	res.TotalHouses = len(res.Merged.MapResults)

	if err := Check(res.Merged); err != nil {
		var ie *IntegrityError
		if errors.As(err, &ie) {
			ie.Cause = stopReason
		}
		return res, fmt.Errorf("%s: %w", tile, err)
	}
	return res, nil
}

// Check verifies that a merged batch's list results cover its map results.
func Check(b model.ResultBatch) error {
	listed, mapped := len(b.ListResults), len(b.MapResults)
	if listed < mapped {
		return &IntegrityError{Listed: listed, Mapped: mapped}
	}
	return nil
}

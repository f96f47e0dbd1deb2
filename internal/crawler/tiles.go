package crawler

import (
	"context"
	"log/slog"

	"github.com/joshuawang25532/MLLM-Housing/internal/artifact"
	"github.com/joshuawang25532/MLLM-Housing/internal/paginate"
	"github.com/joshuawang25532/MLLM-Housing/internal/session"
)

// Searcher is the part of a session the tile crawl needs.
type Searcher interface {
	Search(ctx context.Context, req session.SearchRequest) (session.SearchPage, error)
}

// TileCrawler paginates tiles and stores their merged results.
type TileCrawler struct {
	searcher   Searcher
	controller *paginate.Controller
	dir        string
	logger     *slog.Logger
}

// NewTileCrawler creates a TileCrawler that writes artifacts into dir.
func NewTileCrawler(searcher Searcher, controller *paginate.Controller, dir string, logger *slog.Logger) *TileCrawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TileCrawler{searcher: searcher, controller: controller, dir: dir, logger: logger}
}

// Work is a WorkFunc for tile links.
//
// A tile that paginates to nothing is reported empty and gets no artifact.
// Aborted or inconsistent pagination fails the tile without saving.
func (c *TileCrawler) Work(ctx context.Context, link artifact.TileLink) (Outcome, error) {
	tile := link.Tile()

	res, err := c.controller.Paginate(ctx, tile.Key(), func(ctx context.Context, page int) (paginate.Page, error) {
		sp, err := c.searcher.Search(ctx, session.SearchRequest{Bounds: tile.Bounds, Page: page})
		if err != nil {
			return paginate.Page{}, err
		}
		return paginate.Page{Batch: sp.Batch, Status: sp.Status}, nil
	})
	if err != nil {
		return Outcome{Key: tile.Key(), Pages: res.Pages}, err
	}

	if res.Empty() {
		c.logger.Info("water tile", "tile", tile.Key())
		return Outcome{Empty: true, Key: tile.Key(), Pages: res.Pages}, nil
	}

	saved, err := artifact.SaveTile(c.dir, tile, res.Merged)
	if err != nil {
		return Outcome{Key: tile.Key(), Pages: res.Pages}, err
	}
	c.logger.Debug("tile saved",
		"tile", tile.Key(),
		"pages", res.Pages,
		"listings", res.TotalHouses,
		"path", saved.Path,
	)
	return Outcome{
		Saved:    true,
		Key:      tile.Key(),
		Listings: res.TotalHouses,
		Pages:    res.Pages,
		Artifact: saved.Path,
		Hash:     saved.Hash,
	}, nil
}

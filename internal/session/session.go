package session

import (
	"context"

	"github.com/joshuawang25532/MLLM-Housing/internal/geo"
	"github.com/joshuawang25532/MLLM-Housing/internal/model"
)

// Session is a fetch capability with an explicit lifecycle.
type Session interface {
	// Acquire starts the session. It must be called before any fetch.
	Acquire(ctx context.Context) error
	// Release tears the session down. It is safe to call more than once.
	Release() error
	// Search fetches one page of search results for the given bounds.
	Search(ctx context.Context, req SearchRequest) (SearchPage, error)
	// Detail fetches a listing detail page.
	Detail(ctx context.Context, url string) (DetailPage, error)
}

// SearchRequest identifies one page of a bounded search.
type SearchRequest struct {
	Bounds geo.Bounds
	// Page is 1-based.
	Page int
}

// SearchPage is the decoded response to a SearchRequest.
type SearchPage struct {
	Batch  model.ResultBatch
	Status model.FetchStatus
	// TotalResultCount is the service's reported total, when present.
	TotalResultCount int
}

// DetailPage is a rendered listing detail page.
type DetailPage struct {
	// URL is the requested URL.
	URL string
	// FinalURL is the URL after redirects.
	FinalURL string
	HTML     string
	Status   model.FetchStatus
}

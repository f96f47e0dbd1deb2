package session

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/joshuawang25532/MLLM-Housing/internal/model"
)

// SearchEndpoint is the path of the search API the map page calls.
const SearchEndpoint = "/async-create-search-page-state"

// searchBody is the request payload of the search API.
type searchBody struct {
	SearchQueryState State          `json:"searchQueryState"`
	Wants            map[string]any `json:"wants"`
	RequestID        int            `json:"requestId"`
}

// searchResponse is the subset of the search API response that is used.
type searchResponse struct {
	Cat1 *struct {
		SearchResults *model.ResultBatch `json:"searchResults"`
		SearchList    *struct {
			TotalResultCount int `json:"totalResultCount"`
		} `json:"searchList"`
	} `json:"cat1"`
}

// NewSearchBody builds the search API payload for req on top of the base
// state.
func NewSearchBody(base State, req SearchRequest, requestID int) ([]byte, error) {
	s := base.WithBounds(req.Bounds)
	s["pagination"] = map[string]any{"currentPage": req.Page}
	s["isMapVisible"] = true
	s["isListVisible"] = true

	body := searchBody{
		SearchQueryState: s,
		Wants: map[string]any{
			"cat1": []string{"listResults", "mapResults"},
			"cat2": []string{"total"},
		},
		RequestID: requestID,
	}
	return json.Marshal(body)
}

// DecodeSearchResponse classifies and decodes a search API response.
func DecodeSearchResponse(status int, body []byte) (SearchPage, error) {
	if DetectChallenge(string(body)) || status == http.StatusForbidden {
		return SearchPage{Status: model.StatusChallenge}, nil
	}
	if status < 200 || status >= 300 {
		return SearchPage{}, fmt.Errorf("%w: search returned status %d", ErrFetch, status)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return SearchPage{}, fmt.Errorf("%w: decode search response: %w", ErrFetch, err)
	}
	if resp.Cat1 == nil || resp.Cat1.SearchResults == nil {
		return SearchPage{Status: model.StatusNoResults}, nil
	}

	page := SearchPage{Batch: *resp.Cat1.SearchResults, Status: model.StatusOK}
	if resp.Cat1.SearchList != nil {
		page.TotalResultCount = resp.Cat1.SearchList.TotalResultCount
	}
	return page, nil
}

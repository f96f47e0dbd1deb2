package session

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"strings"

	"github.com/joshuawang25532/MLLM-Housing/internal/geo"
	"github.com/joshuawang25532/MLLM-Housing/internal/model"
)

// DefaultCategory is the category query parameter used when building URLs.
const DefaultCategory = "RECENT_SEARCH"

// State is a decoded searchQueryState.
type State map[string]any

// ExtractSearchState decodes the searchQueryState parameter of a search URL.
func ExtractSearchState(rawURL string) (State, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchState, err)
	}
	raw := u.Query().Get("searchQueryState")
	if raw == "" {
		return nil, fmt.Errorf("%w: no searchQueryState in %s", ErrSearchState, u.Path)
	}
	var s State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchState, err)
	}
	return s, nil
}

// Clone returns a shallow copy of s.
func (s State) Clone() State {
	return maps.Clone(s)
}

// Bounds returns the mapBounds carried by s.
func (s State) Bounds() (geo.Bounds, bool) {
	mb, ok := s["mapBounds"].(map[string]any)
	if !ok {
		return geo.Bounds{}, false
	}
	var b geo.Bounds
	for key, dst := range map[string]*float64{"north": &b.North, "south": &b.South, "east": &b.East, "west": &b.West} {
		v, ok := mb[key].(float64)
		if !ok {
			return geo.Bounds{}, false
		}
		*dst = v
	}
	return b, true
}

// WithBounds returns a copy of s whose mapBounds is b.
func (s State) WithBounds(b geo.Bounds) State {
	c := s.Clone()
	if c == nil {
		c = State{}
	}
	c["mapBounds"] = map[string]any{
		"north": b.North,
		"south": b.South,
		"east":  b.East,
		"west":  b.West,
	}
	return c
}

// BuildURL builds a search URL for path with state encoded as
// searchQueryState. A non-nil bounds overrides the state's mapBounds.
// An empty category defaults to DefaultCategory.
func BuildURL(path string, state State, category string, bounds *geo.Bounds) (string, error) {
	if category == "" {
		category = DefaultCategory
	}
	if bounds != nil {
		state = state.WithBounds(*bounds)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSearchState, err)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return model.BaseURL + path + "?category=" + quote(category) + "&searchQueryState=" + quote(string(data)), nil
}

// quote percent-encodes s for a query value, encoding spaces as %20.
func quote(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

package config

import (
	"time"

	"github.com/joshuawang25532/MLLM-Housing/internal/geo"
)

// Search defines the area to crawl.
type Search struct {
	// URL is a search results URL copied from the browser. Its
	// searchQueryState supplies the filters and, unless Bounds is set,
	// the search bounds.
	URL string `yaml:"url,omitempty"`

	// Path is the search page path tile links are built for, such as
	// "/san-francisco-ca/sold/". Empty uses the path of URL.
	Path string `yaml:"path,omitempty"`

	// Category is the category query parameter of tile links.
	Category string `yaml:"category,omitempty"`

	// Bounds overrides the mapBounds of URL.
	Bounds *geo.Bounds `yaml:"bounds,omitempty"`

	// Reference is a tile known to hold fewer listings than the service
	// returns for one search. Every generated tile is at most this size.
	Reference *geo.Bounds `yaml:"reference,omitempty"`

	// SafetyScale shrinks (below 1) or grows the reference tile size.
	SafetyScale float64 `yaml:"safety_scale,omitempty"`

	// Zoom overrides mapZoom in generated links when positive.
	Zoom int `yaml:"zoom,omitempty"`
}

// Validate checks that the search can be partitioned.
func (s Search) Validate() error {
	if s.URL == "" && s.Bounds == nil {
		return ErrNoSearch
	}
	if s.Reference == nil {
		return ErrNoReference
	}
	if s.SafetyScale < 0 {
		return ErrInvalidSafetyScale
	}
	return nil
}

// Scale returns SafetyScale, defaulting to 1.
func (s Search) Scale() float64 {
	if s.SafetyScale == 0 {
		return 1
	}
	return s.SafetyScale
}

// Browser configures the browser session.
type Browser struct {
	// ExecPath is the Chrome binary. Empty uses the default lookup.
	ExecPath string `yaml:"exec_path,omitempty"`
	// Headless runs without a window. Challenges cannot be cleared by hand
	// in a headless browser.
	Headless  bool   `yaml:"headless,omitempty"`
	UserAgent string `yaml:"user_agent,omitempty"`
}

// Clearance configures how long a challenge page is waited on.
type Clearance struct {
	Attempts int           `yaml:"attempts,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// File represents the structure of the .tilecrawl configuration file.
type File struct {
	Search    Search    `yaml:"search,omitempty"`
	Browser   Browser   `yaml:"browser,omitempty"`
	Clearance Clearance `yaml:"clearance,omitempty"`

	// Profiles customizes the built-in profiles or adds new ones. Only
	// the fields that are set override the built-in values.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "tilecrawl"

	// DefaultProfile is the profile used when --profile is not given.
	DefaultProfile = ProfileMonitored

	// DefaultMaxPages caps the pages fetched for one tile. A tile sized
	// from a good reference tile never needs more than a handful.
	DefaultMaxPages = 50

	// DefaultRateFloor is the minimum interval between two units, applied
	// on top of the profile's random delay.
	DefaultRateFloor = 500 * time.Millisecond

	// DefaultClearanceAttempts and DefaultClearanceInterval bound how long
	// a challenge page is waited on: five minutes in total.
	DefaultClearanceAttempts = 60
	DefaultClearanceInterval = 5 * time.Second

	// DefaultManifestConcurrency is the number of tile files read at once
	// while building the manifest.
	DefaultManifestConcurrency = 8

	// DefaultRecentRuns is the number of journal runs shown by status.
	DefaultRecentRuns = 10

	resultsDirName = "results"
	housesDirName  = "houses"
)

// Config holds all configuration options for tilecrawl.
// It is populated from defaults, the config file and CLI flags, in that
// order, and passed through the application rather than kept global.
type Config struct {
	// DataDir is the root of every file the crawler writes.
	// Defaults to XDG data directory (~/.local/share/tilecrawl on Linux).
	DataDir string

	// Profile names the throughput profile.
	Profile string

	// Verbose enables Debug level logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// JSONReport and MarkdownReport select the summary format.
	// Mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path for the summary.
	// When set, the summary is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile's search order is used.
	ConfigFilePath string

	// File is the loaded configuration file, or nil.
	File *File

	// MaxPages caps the pages fetched per tile.
	MaxPages int

	// MaxConsecutiveFailures stops a run after this many failed units in
	// a row. Zero disables the limit.
	MaxConsecutiveFailures int

	// RateFloor is the minimum interval between units.
	RateFloor time.Duration

	// ManifestConcurrency is the number of tile files read at once.
	ManifestConcurrency int

	// Journal enables the SQLite run journal.
	Journal bool

	// Limit processes at most this many pending units. Zero means all.
	Limit int
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DataDir:             XDGDataDir(),
		Profile:             DefaultProfile,
		MaxPages:            DefaultMaxPages,
		RateFloor:           DefaultRateFloor,
		ManifestConcurrency: DefaultManifestConcurrency,
		Journal:             true,
	}
}

// ResultsDir is where tile artifacts, the tile state and the manifests live.
func (c *Config) ResultsDir() string {
	return filepath.Join(c.DataDir, resultsDirName)
}

// HousesDir is where listing artifacts and the listing state live.
func (c *Config) HousesDir() string {
	return filepath.Join(c.DataDir, housesDirName)
}

// Search returns the search definition from the config file.
func (c *Config) Search() Search {
	if c.File == nil {
		return Search{}
	}
	return c.File.Search
}

// Browser returns the browser settings from the config file.
func (c *Config) Browser() Browser {
	if c.File == nil {
		return Browser{}
	}
	return c.File.Browser
}

// Clearance returns the challenge clearance settings, with defaults for
// unset fields.
func (c *Config) Clearance() Clearance {
	cl := Clearance{
		Attempts: DefaultClearanceAttempts,
		Interval: DefaultClearanceInterval,
	}
	if c.File == nil {
		return cl
	}
	if c.File.Clearance.Attempts != 0 {
		cl.Attempts = c.File.Clearance.Attempts
	}
	if c.File.Clearance.Interval != 0 {
		cl.Interval = c.File.Clearance.Interval
	}
	return cl
}

// XDGDataDir returns the XDG data directory for tilecrawl.
// On Linux: ~/.local/share/tilecrawl
// On macOS: ~/Library/Application Support/tilecrawl
// On Windows: %LOCALAPPDATA%\tilecrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for tilecrawl.
// On Linux: ~/.config/tilecrawl
// On macOS: ~/Library/Application Support/tilecrawl
// On Windows: %APPDATA%\tilecrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found, wrapping a sentinel error.
// The search definition is validated separately by the commands that
// need it.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrNoDataDir
	}

	profile, err := c.ActiveProfile()
	if err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxConsecutiveFailures < 0 {
		return ErrInvalidConsecutiveFailures
	}

	if c.RateFloor < 0 {
		return ErrInvalidRateFloor
	}

	if c.ManifestConcurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if cl := c.Clearance(); cl.Attempts < 0 || cl.Interval < 0 {
		return ErrInvalidClearance
	}

	return nil
}

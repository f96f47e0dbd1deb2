package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joshuawang25532/MLLM-Housing/internal/geo"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default profile is monitored", func(t *testing.T) {
		t.Parallel()
		if cfg.Profile != "monitored" {
			t.Errorf("expected Profile to be 'monitored', got '%s'", cfg.Profile)
		}
	})

	t.Run("default MaxPages is 50", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 50 {
			t.Errorf("expected MaxPages to be 50, got %d", cfg.MaxPages)
		}
	})

	t.Run("default DataDir is the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DataDir != XDGDataDir() {
			t.Errorf("expected DataDir %q, got %q", XDGDataDir(), cfg.DataDir)
		}
	})

	t.Run("journal is on and failure limit is off", func(t *testing.T) {
		t.Parallel()
		if !cfg.Journal {
			t.Error("expected Journal to be true")
		}
		if cfg.MaxConsecutiveFailures != 0 {
			t.Errorf("expected MaxConsecutiveFailures 0, got %d", cfg.MaxConsecutiveFailures)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})
}

func TestDirectories(t *testing.T) {
	t.Parallel()

	cfg := &Config{DataDir: "/data"}
	if got := cfg.ResultsDir(); got != filepath.Join("/data", "results") {
		t.Errorf("ResultsDir() = %q", got)
	}
	if got := cfg.HousesDir(); got != filepath.Join("/data", "houses") {
		t.Errorf("HousesDir() = %q", got)
	}
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{name: "valid config returns nil", modify: func(*Config) {}},
		{name: "empty data dir", modify: func(c *Config) { c.DataDir = "" }, wantErr: ErrNoDataDir},
		{name: "unknown profile", modify: func(c *Config) { c.Profile = "weekend" }, wantErr: ErrUnknownProfile},
		{
			name:    "conflicting report formats",
			modify:  func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			wantErr: ErrConflictingReportFormats,
		},
		{name: "zero max pages", modify: func(c *Config) { c.MaxPages = 0 }, wantErr: ErrInvalidMaxPages},
		{name: "negative failure limit", modify: func(c *Config) { c.MaxConsecutiveFailures = -1 }, wantErr: ErrInvalidConsecutiveFailures},
		{name: "negative rate floor", modify: func(c *Config) { c.RateFloor = -time.Second }, wantErr: ErrInvalidRateFloor},
		{name: "zero concurrency", modify: func(c *Config) { c.ManifestConcurrency = 0 }, wantErr: ErrInvalidConcurrency},
		{
			name:    "negative clearance attempts",
			modify:  func(c *Config) { c.File = &File{Clearance: Clearance{Attempts: -1}} },
			wantErr: ErrInvalidClearance,
		},
		{
			name: "custom profile with min above max",
			modify: func(c *Config) {
				c.File = &File{Profiles: map[string]Profile{
					"broken": {DelayMin: 5 * time.Second, DelayMax: time.Second},
				}}
				c.Profile = "broken"
			},
			wantErr: ErrInvalidProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			cfg.DataDir = t.TempDir()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestProfiles tests the built-in profiles and config file customization.
func TestProfiles(t *testing.T) {
	t.Parallel()

	t.Run("built-in values", func(t *testing.T) {
		t.Parallel()

		profiles := NewConfig().Profiles()

		overnight := profiles[ProfileOvernight]
		if overnight.PageLoadWait != 3*time.Second || overnight.BrowserInitWait != 3*time.Second {
			t.Errorf("overnight waits = %v, %v", overnight.PageLoadWait, overnight.BrowserInitWait)
		}
		if overnight.DelayMean != 4*time.Second || overnight.DelayStdDev != 1500*time.Millisecond ||
			overnight.DelayMin != 2*time.Second || overnight.DelayMax != 10*time.Second {
			t.Errorf("overnight delay = %+v", overnight)
		}

		monitored := profiles[ProfileMonitored]
		if monitored.PageLoadWait != 2*time.Second || monitored.BrowserInitWait != 2*time.Second {
			t.Errorf("monitored waits = %v, %v", monitored.PageLoadWait, monitored.BrowserInitWait)
		}
		if monitored.DelayMean != 1500*time.Millisecond || monitored.DelayStdDev != 500*time.Millisecond ||
			monitored.DelayMin != 500*time.Millisecond || monitored.DelayMax != 3*time.Second {
			t.Errorf("monitored delay = %+v", monitored)
		}
	})

	t.Run("file overrides only set fields", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.File = &File{Profiles: map[string]Profile{
			ProfileOvernight: {DelayMax: 20 * time.Second},
		}}
		cfg.Profile = ProfileOvernight

		p, err := cfg.ActiveProfile()
		if err != nil {
			t.Fatalf("ActiveProfile() error = %v", err)
		}
		if p.DelayMax != 20*time.Second {
			t.Errorf("DelayMax = %v, want 20s", p.DelayMax)
		}
		if p.DelayMean != 4*time.Second {
			t.Errorf("DelayMean = %v, want built-in 4s", p.DelayMean)
		}
		if p.Name != ProfileOvernight {
			t.Errorf("Name = %q", p.Name)
		}
	})

	t.Run("file adds new profile", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.File = &File{Profiles: map[string]Profile{
			"weekend": {DelayMean: 8 * time.Second},
		}}

		names := cfg.ProfileNames()
		want := []string{"monitored", "overnight", "weekend"}
		if len(names) != len(want) {
			t.Fatalf("ProfileNames() = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("ProfileNames()[%d] = %q, want %q", i, names[i], want[i])
			}
		}
	})

	t.Run("built-ins are not shared", func(t *testing.T) {
		t.Parallel()

		a := NewConfig().Profiles()
		p := a[ProfileMonitored]
		p.DelayMean = time.Hour
		a[ProfileMonitored] = p

		if NewConfig().Profiles()[ProfileMonitored].DelayMean == time.Hour {
			t.Error("built-in profile was modified")
		}
	})
}

func TestClearance(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if cl := cfg.Clearance(); cl.Attempts != DefaultClearanceAttempts || cl.Interval != DefaultClearanceInterval {
		t.Errorf("default Clearance() = %+v", cl)
	}

	cfg.File = &File{Clearance: Clearance{Interval: time.Second}}
	cl := cfg.Clearance()
	if cl.Interval != time.Second || cl.Attempts != DefaultClearanceAttempts {
		t.Errorf("Clearance() = %+v", cl)
	}
}

func TestSearchValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		search  Search
		wantErr error
	}{
		{name: "nothing set", search: Search{}, wantErr: ErrNoSearch},
		{name: "no reference", search: Search{URL: "https://www.zillow.com/homes/"}, wantErr: ErrNoReference},
		{
			name:    "negative scale",
			search:  Search{URL: "https://www.zillow.com/homes/", Reference: &geoRef, SafetyScale: -1},
			wantErr: ErrInvalidSafetyScale,
		},
		{name: "url and reference", search: Search{URL: "https://www.zillow.com/homes/", Reference: &geoRef}},
		{name: "bounds and reference", search: Search{Bounds: &geoRef, Reference: &geoRef}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.search.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if got := (Search{}).Scale(); got != 1 {
		t.Errorf("Scale() = %g, want 1", got)
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.tilecrawl")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".tilecrawl")
		content := `search:
  url: "https://www.zillow.com/san-francisco-ca/sold/"
  path: /san-francisco-ca/sold/
  safety_scale: 0.8
  zoom: 15
  reference:
    north: 37.797466660899765
    south: 37.79044676337045
    east: -122.41580987611296
    west: -122.42879176774504
browser:
  headless: true
  exec_path: /usr/bin/chromium
clearance:
  attempts: 10
  interval: 3s
profiles:
  overnight:
    delay_mean: 6s
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cf.Search.Path != "/san-francisco-ca/sold/" || cf.Search.SafetyScale != 0.8 || cf.Search.Zoom != 15 {
			t.Errorf("search = %+v", cf.Search)
		}
		if cf.Search.Reference == nil || cf.Search.Reference.North != 37.797466660899765 {
			t.Errorf("reference = %+v", cf.Search.Reference)
		}
		if cf.Search.Bounds != nil {
			t.Error("expected bounds to be unset")
		}
		if !cf.Browser.Headless || cf.Browser.ExecPath != "/usr/bin/chromium" {
			t.Errorf("browser = %+v", cf.Browser)
		}
		if cf.Clearance.Attempts != 10 || cf.Clearance.Interval != 3*time.Second {
			t.Errorf("clearance = %+v", cf.Clearance)
		}
		if cf.Profiles["overnight"].DelayMean != 6*time.Second {
			t.Errorf("overnight delay_mean = %v", cf.Profiles["overnight"].DelayMean)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".tilecrawl")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Profiles map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".tilecrawl")
		if err := os.WriteFile(configPath, []byte("browser:\n  headless: false\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Profiles == nil {
			t.Error("expected Profiles map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("search: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("finds file in current directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("search: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		t.Chdir(dir)

		got := FindConfigFile("")
		if filepath.Base(got) != DefaultConfigFile || filepath.Dir(got) == "" {
			t.Errorf("expected config in %s, got %q", dir, got)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if dir == "" {
			t.Errorf("expected non-empty XDG %s dir", name)
		}
		if filepath.Base(dir) != AppName {
			t.Errorf("expected XDG %s dir to end in %s, got %q", name, AppName, dir)
		}
	}
}

var geoRef = geo.Bounds{North: 37.7974, South: 37.7904, East: -122.4158, West: -122.4288}

package config

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Built-in profile names.
const (
	// ProfileMonitored is the high-throughput profile for runs someone is watching.
	ProfileMonitored = "monitored"
	// ProfileOvernight is the slower profile for unattended runs.
	ProfileOvernight = "overnight"
)

// Profile is a named set of throughput settings. It is selected once at
// startup and passed down to the session and the pacer.
type Profile struct {
	Name string `yaml:"-"`

	// PageLoadWait is the pause after navigating to a page.
	PageLoadWait time.Duration `yaml:"page_load_wait,omitempty"`
	// BrowserInitWait is the pause after the browser warm-up navigation.
	BrowserInitWait time.Duration `yaml:"browser_init_wait,omitempty"`

	// The delay between units is drawn from a normal distribution with
	// DelayMean and DelayStdDev, clamped to [DelayMin, DelayMax].
	DelayMean   time.Duration `yaml:"delay_mean,omitempty"`
	DelayStdDev time.Duration `yaml:"delay_stddev,omitempty"`
	DelayMin    time.Duration `yaml:"delay_min,omitempty"`
	DelayMax    time.Duration `yaml:"delay_max,omitempty"`
}

// builtinProfiles returns fresh copies of the built-in profiles.
func builtinProfiles() map[string]Profile {
	return map[string]Profile{
		ProfileMonitored: {
			Name:            ProfileMonitored,
			PageLoadWait:    2 * time.Second,
			BrowserInitWait: 2 * time.Second,
			DelayMean:       1500 * time.Millisecond,
			DelayStdDev:     500 * time.Millisecond,
			DelayMin:        500 * time.Millisecond,
			DelayMax:        3 * time.Second,
		},
		ProfileOvernight: {
			Name:            ProfileOvernight,
			PageLoadWait:    3 * time.Second,
			BrowserInitWait: 3 * time.Second,
			DelayMean:       4 * time.Second,
			DelayStdDev:     1500 * time.Millisecond,
			DelayMin:        2 * time.Second,
			DelayMax:        10 * time.Second,
		},
	}
}

// Validate checks the profile's durations.
func (p Profile) Validate() error {
	for _, d := range []time.Duration{p.PageLoadWait, p.BrowserInitWait, p.DelayMean, p.DelayStdDev, p.DelayMin, p.DelayMax} {
		if d < 0 {
			return fmt.Errorf("%w %q: durations must be non-negative", ErrInvalidProfile, p.Name)
		}
	}
	if p.DelayMax > 0 && p.DelayMin > p.DelayMax {
		return fmt.Errorf("%w %q: delay_min %s exceeds delay_max %s", ErrInvalidProfile, p.Name, p.DelayMin, p.DelayMax)
	}
	return nil
}

// merge overrides p with the non-zero fields of o.
func (p Profile) merge(o Profile) Profile {
	if o.PageLoadWait != 0 {
		p.PageLoadWait = o.PageLoadWait
	}
	if o.BrowserInitWait != 0 {
		p.BrowserInitWait = o.BrowserInitWait
	}
	if o.DelayMean != 0 {
		p.DelayMean = o.DelayMean
	}
	if o.DelayStdDev != 0 {
		p.DelayStdDev = o.DelayStdDev
	}
	if o.DelayMin != 0 {
		p.DelayMin = o.DelayMin
	}
	if o.DelayMax != 0 {
		p.DelayMax = o.DelayMax
	}
	return p
}

// Profiles returns every known profile: the built-ins, customized or
// extended by the config file's profiles section.
func (c *Config) Profiles() map[string]Profile {
	profiles := builtinProfiles()
	if c.File == nil {
		return profiles
	}
	for name, custom := range c.File.Profiles {
		base, ok := profiles[name]
		if !ok {
			base = Profile{}
		}
		merged := base.merge(custom)
		merged.Name = name
		profiles[name] = merged
	}
	return profiles
}

// ProfileNames returns the known profile names in sorted order.
func (c *Config) ProfileNames() []string {
	return slices.Sorted(maps.Keys(c.Profiles()))
}

// ActiveProfile returns the profile selected by c.Profile.
func (c *Config) ActiveProfile() (Profile, error) {
	p, ok := c.Profiles()[c.Profile]
	if !ok {
		return Profile{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownProfile, c.Profile, c.ProfileNames())
	}
	return p, nil
}

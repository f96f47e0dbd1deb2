package main

import (
	"slices"
	"testing"

	"github.com/joshuawang25532/MLLM-Housing/internal/config"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "tilecrawl" {
			t.Errorf("expected use 'tilecrawl', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{"verbose", "v", "false"},
			{"log-json", "", "false"},
			{"config", "c", ""},
			{"profile", "P", config.DefaultProfile},
			{"data-dir", "d", config.XDGDataDir()},
		}
		for _, tt := range tests {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("%s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("%s: expected default %q, got %q", tt.name, tt.defValue, flag.DefValue)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		var names []string
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		for _, want := range []string{"init", "partition", "tiles", "manifest", "details", "run", "status", "version"} {
			if !slices.Contains(names, want) {
				t.Errorf("expected %s subcommand, got %v", want, names)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}

// TestCrawlCommandFlags checks that the browser-driving commands share
// the same crawl and report flags.
func TestCrawlCommandFlags(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	for _, name := range []string{"tiles", "details", "run"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cmd, _, err := root.Find([]string{name})
			if err != nil {
				t.Fatalf("Find(%s) error = %v", name, err)
			}
			for _, flag := range []string{"max-consecutive-failures", "rate-floor", "limit", "headless", "no-journal", "json", "markdown", "output"} {
				if cmd.Flags().Lookup(flag) == nil {
					t.Errorf("%s: expected %s flag", name, flag)
				}
			}
		})
	}

	t.Run("details has no page cap", func(t *testing.T) {
		t.Parallel()
		cmd, _, err := root.Find([]string{"details"})
		if err != nil {
			t.Fatal(err)
		}
		if cmd.Flags().Lookup("max-pages") != nil {
			t.Error("details should not register max-pages")
		}
	})
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuawang25532/MLLM-Housing/internal/config"
)

// addCrawlFlags registers the flags shared by the commands that drive the
// browser.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-consecutive-failures", 0,
		"Stop after this many failed units in a row (0 disables the limit)")
	cmd.Flags().Duration("rate-floor", config.DefaultRateFloor,
		"Minimum interval between two units, on top of the profile delay")
	cmd.Flags().IntP("limit", "n", 0,
		"Process at most this many pending units (0 processes all)")
	cmd.Flags().Bool("headless", false,
		"Run the browser without a window (overrides the config file)")
	cmd.Flags().Bool("no-journal", false,
		"Do not record runs in the SQLite journal")
}

// addMaxPagesFlag registers the per-tile page cap.
func addMaxPagesFlag(cmd *cobra.Command) {
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of result pages fetched per tile")
}

// addReportFlags registers the summary output flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// buildConfig creates a Config from cobra command flags and the config
// file. Flags a command does not register keep their defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	var err error

	if cfg.Verbose, err = persistentBool(cmd, "verbose"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = persistentBool(cmd, "log-json"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = persistentString(cmd, "config"); err != nil {
		return nil, err
	}
	if cfg.Profile, err = persistentString(cmd, "profile"); err != nil {
		return nil, err
	}
	if cfg.DataDir, err = persistentString(cmd, "data-dir"); err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. Otherwise run without one.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.File, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	flags := cmd.Flags()
	if flags.Lookup("max-pages") != nil {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("max-consecutive-failures") != nil {
		if cfg.MaxConsecutiveFailures, err = flags.GetInt("max-consecutive-failures"); err != nil {
			return nil, err
		}
		if cfg.RateFloor, err = flags.GetDuration("rate-floor"); err != nil {
			return nil, err
		}
		if cfg.Limit, err = flags.GetInt("limit"); err != nil {
			return nil, err
		}
		noJournal, err := flags.GetBool("no-journal")
		if err != nil {
			return nil, err
		}
		cfg.Journal = !noJournal

		if flags.Changed("headless") {
			headless, err := flags.GetBool("headless")
			if err != nil {
				return nil, err
			}
			if cfg.File == nil {
				cfg.File = &config.File{}
			}
			cfg.File.Browser.Headless = headless
		}
	}
	if flags.Lookup("concurrency") != nil {
		if cfg.ManifestConcurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("json") != nil {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
		if cfg.ReportFile, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// persistentBool retrieves a root flag from the command or its parent.
func persistentBool(cmd *cobra.Command, name string) (bool, error) {
	v, err := cmd.Flags().GetBool(name)
	if err == nil {
		return v, nil
	}
	v, rerr := cmd.Root().PersistentFlags().GetBool(name)
	if rerr != nil {
		return false, errors.Join(err, rerr)
	}
	return v, nil
}

// persistentString retrieves a root flag from the command or its parent.
func persistentString(cmd *cobra.Command, name string) (string, error) {
	v, err := cmd.Flags().GetString(name)
	if err == nil {
		return v, nil
	}
	v, rerr := cmd.Root().PersistentFlags().GetString(name)
	if rerr != nil {
		return "", errors.Join(err, rerr)
	}
	return v, nil
}

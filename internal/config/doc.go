// Package config provides configuration structures and utilities for tilecrawl.
// It defines the throughput profiles, the search definition read from the
// YAML config file, browser settings and data directory layout.
package config

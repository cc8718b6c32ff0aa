// Package config provides centralized configuration constants for bundlework.
// All default values should be defined here to ensure a single source of truth.
package config

// Project layout defaults.
const (
	// DefaultRootDir is the per-project state directory.
	DefaultRootDir = ".bundlework"

	// DefaultDataFile is the sqlite database file name inside the root dir.
	DefaultDataFile = "bundlework.db"

	// DefaultExportsDir is where bundle reports land, relative to the root dir.
	DefaultExportsDir = "exports"
)

// Environment defaults.
const (
	// EnvPrefix is the prefix for configuration environment variables,
	// e.g. BUNDLEWORK_ACTOR_ID.
	EnvPrefix = "BUNDLEWORK"

	// DefaultConfigName is the config file base name (.bundlework.yaml).
	DefaultConfigName = ".bundlework"
)

// Package config loads, normalizes, and validates the aliasarr TOML
// configuration. Tracker database locations are explicit configuration
// passed to each repository at construction; there is no process-wide
// mutable state.
package config

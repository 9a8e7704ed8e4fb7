// Package search fans a query out to the configured tracker repositories,
// folds network-paired alias rows into single entries, and merges the
// results into one ordered listing.
package search

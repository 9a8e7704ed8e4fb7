// Package movies implements the alias repository over the movie tracker's
// native storage: Movies joined to MovieMetadata, with aliases in
// AlternativeTitles. The tracker periodically rewrites AlternativeTitles
// from upstream metadata, so every manual write is mirrored to the ledger
// and missing rows are re-inserted ahead of reads.
package movies

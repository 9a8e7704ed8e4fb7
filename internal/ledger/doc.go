// Package ledger durably records every manual movie alias the overlay has
// created, independent of the tracker's own alias table. The tracker
// periodically rewrites that table from upstream metadata and can silently
// drop manual rows; the ledger is the source of truth for what should exist
// and feeds reconciliation.
package ledger

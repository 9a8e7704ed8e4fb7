// Package storage holds the SQLite plumbing shared by the tracker
// repositories and the ledger: connection setup, busy retries against the
// trackers' own writers, transactions, and WAL checkpoint forcing.
package storage

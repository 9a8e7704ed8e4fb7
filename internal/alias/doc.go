// Package alias defines the shared data model for alias entries, media
// items, and the error taxonomy used by both tracker repositories.
package alias

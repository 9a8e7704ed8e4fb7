// Package title reproduces the tracker-internal title normalization that
// turns a display title into its matching key. The series and movie trackers
// share the pipeline except for one diacritic-expansion step; the overlay
// must match both byte-for-byte or an alias will never resolve.
package title

package alias

import "errors"

var (
	// ErrInvalidTitle marks input that canonicalizes to an empty key or is
	// missing a required identity. Rejected before touching storage.
	ErrInvalidTitle = errors.New("invalid title")

	// ErrDuplicateAlias marks a manual uniqueness violation. No partial
	// write occurs.
	ErrDuplicateAlias = errors.New("duplicate alias")

	// ErrNotFound marks an operation on an id that does not exist.
	ErrNotFound = errors.New("alias not found")

	// ErrForbidden marks an attempt to delete a tracker-native entry.
	ErrForbidden = errors.New("alias is not manual")

	// ErrStorageUnavailable marks a tracker that is not configured or whose
	// database file is missing. Surfaced as a degraded condition, not a crash.
	ErrStorageUnavailable = errors.New("tracker storage unavailable")
)

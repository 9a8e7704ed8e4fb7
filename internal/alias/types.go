package alias

// Provenance records who created an alias row.
type Provenance string

const (
	// ProvenanceManual marks rows created by this overlay. Only manual rows
	// may be deleted through it.
	ProvenanceManual Provenance = "manual"
	// ProvenanceNative marks rows owned by the tracker itself; they are
	// read-only to the overlay.
	ProvenanceNative Provenance = "native"
)

// Entry is one searchable title bound to one media item.
type Entry struct {
	ID           int64
	Title        string
	SearchTerm   string
	CanonicalKey string
	MediaRef     int64
	Provenance   Provenance
	// Season scopes a series alias to a single season. Nil means unscoped;
	// movie aliases never carry a season.
	Season *int
	// Network is the secondary qualifier of a paired alias.
	Network string
	// LinkTag groups the two rows of a paired alias. Empty for plain rows.
	LinkTag string
}

// Manual reports whether the entry was created by the overlay.
func (e Entry) Manual() bool {
	return e.Provenance == ProvenanceManual
}

// NewAlias describes a manual alias to be created.
type NewAlias struct {
	MediaRef   int64
	Title      string
	SearchTerm string
	Season     *int
	Network    string
}

// MediaItem is a read-only view of one tracker media row together with its
// alias entries, ordered native before manual.
type MediaItem struct {
	MediaRef int64
	Title    string
	Year     int
	Status   string
	Aliases  []Entry
}

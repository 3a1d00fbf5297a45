package historian

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// FieldHasChildren is the derived marker field carried by every listed tag.
// This backend has no tag hierarchy beyond the group prefix, so the marker
// is always false.
const FieldHasChildren = "HasChildren"

// Row is one backend row, keyed by column name as returned by the backend,
// possibly extended with canonical attribute names and derived markers.
type Row map[string]any

// TagSet is the merged result of a tag listing: one Row per tag, keyed by
// the fully qualified tag address.
type TagSet map[string]Row

// MarshalJSON renders the TagSet with deterministically ordered keys.
func (ts TagSet) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(map[string]Row(ts))
}

// Sample is one canonical time-series observation: which tag, when, what value.
type Sample struct {
	Name      string
	Timestamp time.Time
	Value     any
}

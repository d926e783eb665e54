package filter

import (
	gocid "github.com/ipfs/go-cid"

	"github.com/hookdeck/dwn-go/internal/value"
)

// Key names a filterable column, tagged as either a first-class index or a
// tenant-defined tag. Index and Tag keys with the same name are distinct.
type Key struct {
	name string
	tag  bool
}

// Index tags name as matched against the flat indexes map.
func Index(name string) Key { return Key{name: name} }

// Tag tags name as matched against tags.<name>.
func Tag(name string) Key { return Key{name: name, tag: true} }

func (k Key) Name() string { return k.name }
func (k Key) IsTag() bool  { return k.tag }

// Keybase is the bind-alias-safe stem derived from the key, used by the
// query compiler to generate `{keybase}_{conjunction_index}_{idx|tag}`.
func (k Key) Keybase() string { return k.name }

func (k Key) String() string {
	if k.tag {
		return "tag:" + k.name
	}
	return "index:" + k.name
}

// Conjunction is one inner AND: every (key, filter) pair must match.
type Conjunction map[Key]Filter

// Set is the outer OR of Conjunctions: a row matches iff it matches at
// least one conjunction.
type Set []Conjunction

// Validate checks every filter in every conjunction.
func (s Set) Validate() error {
	for _, conj := range s {
		for _, f := range conj {
			if err := f.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// SortField names a supported sort column over messages.
type SortField string

const (
	SortDateCreated       SortField = "dateCreated"
	SortDatePublished     SortField = "datePublished"
	SortMessageTimestamp  SortField = "messageTimestamp"
	SortWatermark         SortField = "watermark"
)

// Sort pairs a sort field with its direction. The zero value sorts by
// messageTimestamp ascending, the documented default.
type Sort struct {
	Field     SortField
	Ascending bool
}

// DefaultSort is messageTimestamp ascending.
func DefaultSort() Sort { return Sort{Field: SortMessageTimestamp, Ascending: true} }

// Order returns the ordered key list for this sort, always ending in cid as
// the deterministic tiebreak.
func (s Sort) Order() []struct {
	Field     string
	Ascending bool
} {
	field := string(s.Field)
	if field == "" {
		field = string(SortMessageTimestamp)
	}
	tiebreak := "cid"
	if s.Field == SortWatermark {
		return []struct {
			Field     string
			Ascending bool
		}{{Field: "watermark", Ascending: s.Ascending}}
	}
	return []struct {
		Field     string
		Ascending bool
	}{
		{Field: field, Ascending: s.Ascending},
		{Field: tiebreak, Ascending: s.Ascending},
	}
}

// Cursor is the opaque continuation token: the sort value and cid of the
// last row returned by the previous page.
type Cursor struct {
	Value value.Value `json:"value"`
	CID   gocid.Cid   `json:"messageCid"`
}

// Pagination is a caller's page request: an optional cursor and a limit.
// A zero Limit means "no limit" to callers, but compilers should apply a
// sane default rather than fetch unbounded rows.
type Pagination struct {
	Cursor *Cursor `json:"cursor,omitempty"`
	Limit  uint64  `json:"limit,omitempty"`
}

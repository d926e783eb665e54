// Package query compiles a filter set, sort, and pagination request into a
// backend query: an in-memory predicate for the memory-backed stores, or a
// bind-parameterised WHERE/ORDER BY clause for SQL backends. Both share the
// same bind-alias scheme and cursor continuation contract.
package query

import (
	"strings"

	gocid "github.com/ipfs/go-cid"

	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/value"
)

// Row is one candidate record as seen by the compiler: its own cid plus the
// flat indexes and tags maps a message or event log entry was stored with.
type Row struct {
	CID     gocid.Cid
	Indexes map[string]value.Value
	Tags    map[string]value.Value
}

func (r Row) lookup(k filter.Key) (value.Value, bool) {
	if k.IsTag() {
		v, ok := r.Tags[k.Name()]
		return v, ok
	}
	v, ok := r.Indexes[k.Name()]
	return v, ok
}

// sortValue returns the row's value for a sort field, falling back to the cid
// itself when the field is empty (never happens for a well-formed Sort, but
// keeps this total).
func (r Row) sortValue(field filter.SortField) (value.Value, bool) {
	v, ok := r.Indexes[string(field)]
	return v, ok
}

// Matches reports whether row satisfies set: an empty set matches everything
// (the unfiltered query case), otherwise the row must satisfy at least one
// inner conjunction.
func Matches(set filter.Set, row Row) bool {
	if len(set) == 0 {
		return true
	}
	for _, conj := range set {
		if matchConjunction(conj, row) {
			return true
		}
	}
	return false
}

func matchConjunction(conj filter.Conjunction, row Row) bool {
	for k, f := range conj {
		v, ok := row.lookup(k)
		if !matchFilter(f, v, ok) {
			return false
		}
	}
	return true
}

func matchFilter(f filter.Filter, v value.Value, ok bool) bool {
	if !ok {
		return false
	}
	switch f.Kind() {
	case filter.KindEqual:
		return value.Equal(f.EqualValue(), v)
	case filter.KindRange:
		lower, upper := f.Bounds()
		return matchBound(lower, v, true) && matchBound(upper, v, false)
	case filter.KindOneOf:
		for _, ev := range f.OneOfValues() {
			if value.Equal(ev, v) {
				return true
			}
		}
		return false
	case filter.KindPrefix:
		s, sok := v.AsString()
		p, pok := f.PrefixValue().AsString()
		return sok && pok && strings.HasPrefix(s, p)
	}
	return false
}

func matchBound(b filter.Bound, v value.Value, isLower bool) bool {
	switch b.Kind {
	case filter.Unbounded:
		return true
	case filter.Included:
		cmp := value.Compare(v, b.Value)
		if isLower {
			return cmp >= 0
		}
		return cmp <= 0
	case filter.Excluded:
		cmp := value.Compare(v, b.Value)
		if isLower {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

// continuationMatches implements the half-open continuation predicate:
// (sort_key = cursor.value AND cid >op cursor.cid) OR (sort_key >op cursor.value).
func continuationMatches(row Row, field filter.SortField, ascending bool, cursor filter.Cursor) bool {
	rowVal, ok := row.sortValue(field)
	if !ok {
		return false
	}
	cmpVal := value.Compare(rowVal, cursor.Value)
	if cmpVal == 0 {
		cmpCid := strings.Compare(row.CID.String(), cursor.CID.String())
		if ascending {
			return cmpCid > 0
		}
		return cmpCid < 0
	}
	if ascending {
		return cmpVal > 0
	}
	return cmpVal < 0
}

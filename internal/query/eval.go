package query

import (
	"sort"

	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/value"
)

// DefaultLimit is applied when a caller's Pagination.Limit is zero, so that
// an unbounded request never forces a full-table scan to materialize.
const DefaultLimit = 100

// Evaluate runs the full compiler pipeline against an already-materialized
// row set: filter, optional cursor continuation, sort, and the N+1
// pagination/cursor-emission contract. It is the reference implementation
// used directly by the in-memory store and as the oracle every backend-
// pushed-down query must agree with.
func Evaluate(rows []Row, set filter.Set, s filter.Sort, pag filter.Pagination, alwaysCursor bool) ([]Row, *filter.Cursor, error) {
	if err := set.Validate(); err != nil {
		return nil, nil, err
	}

	field := s.Field
	if field == "" {
		field = filter.SortMessageTimestamp
	}

	matched := make([]Row, 0, len(rows))
	for _, row := range rows {
		if !Matches(set, row) {
			continue
		}
		if pag.Cursor != nil && !continuationMatches(row, field, s.Ascending, *pag.Cursor) {
			continue
		}
		matched = append(matched, row)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return lessRow(matched[i], matched[j], field, s.Ascending)
	})

	limit := pag.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	hasMore := uint64(len(matched)) > limit
	if hasMore {
		matched = matched[:limit]
	}

	var next *filter.Cursor
	if len(matched) > 0 && (hasMore || alwaysCursor) {
		last := matched[len(matched)-1]
		v, _ := last.sortValue(field)
		next = &filter.Cursor{Value: v, CID: last.CID}
	}

	return matched, next, nil
}

func lessRow(a, b Row, field filter.SortField, ascending bool) bool {
	av, _ := a.sortValue(field)
	bv, _ := b.sortValue(field)
	cmp := value.Compare(av, bv)
	if cmp == 0 {
		if ascending {
			return a.CID.String() < b.CID.String()
		}
		return a.CID.String() > b.CID.String()
	}
	if ascending {
		return cmp < 0
	}
	return cmp > 0
}

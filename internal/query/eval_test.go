package query_test

import (
	"testing"
	"time"

	gocid "github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dwncid "github.com/hookdeck/dwn-go/internal/cid"
	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/query"
	"github.com/hookdeck/dwn-go/internal/value"
)

func mustCID(t *testing.T, seed string) gocid.Cid {
	t.Helper()
	c, err := dwncid.Of([]byte(seed))
	require.NoError(t, err)
	return c
}

func row(t *testing.T, seed string, ts time.Time, extra map[string]value.Value) query.Row {
	t.Helper()
	idx := map[string]value.Value{"messageTimestamp": value.DateTime(ts)}
	for k, v := range extra {
		idx[k] = v
	}
	return query.Row{CID: mustCID(t, seed), Indexes: idx}
}

func TestEvaluateEmptyFilterPagination(t *testing.T) {
	t.Run("N+1 pagination without tie emits cursor and next page is a strict suffix", func(t *testing.T) {
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		var rows []query.Row
		for i := 0; i < 5; i++ {
			rows = append(rows, row(t, string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour), nil))
		}

		page1, cursor1, err := query.Evaluate(rows, nil, filter.DefaultSort(), filter.Pagination{Limit: 2}, false)
		require.NoError(t, err)
		require.Len(t, page1, 2)
		require.NotNil(t, cursor1)

		page2, cursor2, err := query.Evaluate(rows, nil, filter.DefaultSort(), filter.Pagination{Limit: 2, Cursor: cursor1}, false)
		require.NoError(t, err)
		require.Len(t, page2, 2)
		require.NotNil(t, cursor2)

		page3, cursor3, err := query.Evaluate(rows, nil, filter.DefaultSort(), filter.Pagination{Limit: 2, Cursor: cursor2}, false)
		require.NoError(t, err)
		require.Len(t, page3, 1)
		assert.Nil(t, cursor3)

		var seen []string
		for _, p := range [][]query.Row{page1, page2, page3} {
			for _, r := range p {
				seen = append(seen, r.CID.String())
			}
		}
		assert.Len(t, seen, 5)
		assert.Equal(t, len(seen), len(uniqueStrings(seen)))
	})

	t.Run("tie-break on identical sort values orders by cid ascending", func(t *testing.T) {
		T := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		var rows []query.Row
		for i := 0; i < 4; i++ {
			rows = append(rows, row(t, string(rune('w'+i)), T, nil))
		}

		page, cursor, err := query.Evaluate(rows, nil, filter.Sort{Field: filter.SortMessageTimestamp, Ascending: true}, filter.Pagination{Limit: 2}, false)
		require.NoError(t, err)
		require.Len(t, page, 2)
		require.NotNil(t, cursor)
		assert.True(t, value.Equal(cursor.Value, value.DateTime(T)))
		assert.Equal(t, page[1].CID.String(), cursor.CID.String())

		rest, cursor2, err := query.Evaluate(rows, nil, filter.Sort{Field: filter.SortMessageTimestamp, Ascending: true}, filter.Pagination{Limit: 2, Cursor: cursor}, false)
		require.NoError(t, err)
		require.Len(t, rest, 2)
		assert.Nil(t, cursor2)
	})
}

func TestEvaluateFilterSet(t *testing.T) {
	t.Run("OR of ANDs matches either conjunction", func(t *testing.T) {
		base := time.Now().UTC()
		rowA := row(t, "A", base, map[string]value.Value{"interface": value.String("Records"), "method": value.String("Write")})
		rowB := row(t, "B", base, map[string]value.Value{"interface": value.String("Protocols"), "method": value.String("Configure")})
		rowC := row(t, "C", base, map[string]value.Value{"interface": value.String("Messages"), "method": value.String("Read")})

		set := filter.Set{
			{filter.Index("interface"): filter.Equal(value.String("Records")), filter.Index("method"): filter.Equal(value.String("Write"))},
			{filter.Index("interface"): filter.Equal(value.String("Protocols"))},
		}

		matched, _, err := query.Evaluate([]query.Row{rowA, rowB, rowC}, set, filter.DefaultSort(), filter.Pagination{}, false)
		require.NoError(t, err)
		require.Len(t, matched, 2)
		ids := map[string]bool{matched[0].CID.String(): true, matched[1].CID.String(): true}
		assert.True(t, ids[rowA.CID.String()])
		assert.True(t, ids[rowB.CID.String()])
	})

	t.Run("range filter returns only the row within bounds", func(t *testing.T) {
		dates := []string{"2020-01-01T00:00:00Z", "2022-06-01T00:00:00Z", "2024-12-01T00:00:00Z"}
		var rows []query.Row
		for i, d := range dates {
			t0, err := time.Parse(time.RFC3339, d)
			require.NoError(t, err)
			rows = append(rows, row(t, string(rune('p'+i)), time.Now(), map[string]value.Value{"dateCreated": value.DateTime(t0)}))
		}

		lowerT, _ := time.Parse(time.RFC3339, "2022-01-01T00:00:00Z")
		upperT, _ := time.Parse(time.RFC3339, "2024-01-01T00:00:00Z")
		set := filter.Set{{
			filter.Index("dateCreated"): filter.Range(
				filter.IncludedBound(value.DateTime(lowerT)),
				filter.ExcludedBound(value.DateTime(upperT)),
			),
		}}

		matched, _, err := query.Evaluate(rows, set, filter.DefaultSort(), filter.Pagination{}, false)
		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, rows[1].CID.String(), matched[0].CID.String())
	})

	t.Run("invalid filter set propagates validation error", func(t *testing.T) {
		set := filter.Set{{filter.Index("x"): filter.Range(filter.UnboundedBound(), filter.UnboundedBound())}}
		_, _, err := query.Evaluate(nil, set, filter.DefaultSort(), filter.Pagination{}, false)
		assert.Error(t, err)
	})
}

func TestEvaluateAlwaysCursor(t *testing.T) {
	t.Run("emits cursor even when fewer than limit rows match", func(t *testing.T) {
		rows := []query.Row{row(t, "only", time.Now(), nil)}
		matched, cursor, err := query.Evaluate(rows, nil, filter.Sort{Field: filter.SortWatermark, Ascending: true}, filter.Pagination{Limit: 10}, true)
		require.NoError(t, err)
		require.Len(t, matched, 1)
		require.NotNil(t, cursor)
	})

	t.Run("empty result emits no cursor regardless of always_cursor", func(t *testing.T) {
		_, cursor, err := query.Evaluate(nil, nil, filter.Sort{Field: filter.SortWatermark, Ascending: true}, filter.Pagination{Limit: 10}, true)
		require.NoError(t, err)
		assert.Nil(t, cursor)
	})
}

func uniqueStrings(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

package filter_test

import (
	"encoding/json"
	"testing"

	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMarshalJSON(t *testing.T) {
	t.Run("equal marshals as bare value", func(t *testing.T) {
		f := filter.Equal(value.String("text/plain"))
		data, err := json.Marshal(f)
		require.NoError(t, err)
		assert.JSONEq(t, `"text/plain"`, string(data))
	})

	t.Run("range marshals as gte/lt", func(t *testing.T) {
		f := filter.Range(filter.IncludedBound(value.Int(1)), filter.ExcludedBound(value.Int(2)))
		data, err := json.Marshal(f)
		require.NoError(t, err)
		assert.JSONEq(t, `{"gte":1,"lt":2}`, string(data))
	})

	t.Run("range with only lower bound", func(t *testing.T) {
		f := filter.Range(filter.IncludedBound(value.Int(1)), filter.UnboundedBound())
		data, err := json.Marshal(f)
		require.NoError(t, err)
		assert.JSONEq(t, `{"gte":1}`, string(data))
	})

	t.Run("one-of marshals as array", func(t *testing.T) {
		f := filter.OneOf([]value.Value{value.String("a"), value.String("b")})
		data, err := json.Marshal(f)
		require.NoError(t, err)
		assert.JSONEq(t, `["a","b"]`, string(data))
	})

	t.Run("prefix marshals as object", func(t *testing.T) {
		f := filter.Prefix(value.String("test"))
		data, err := json.Marshal(f)
		require.NoError(t, err)
		assert.JSONEq(t, `{"prefix":"test"}`, string(data))
	})
}

func TestFilterUnmarshalJSON(t *testing.T) {
	t.Run("string literal becomes equal", func(t *testing.T) {
		var f filter.Filter
		require.NoError(t, json.Unmarshal([]byte(`"hello"`), &f))
		assert.Equal(t, filter.KindEqual, f.Kind())
	})

	t.Run("range object round-trips bounds", func(t *testing.T) {
		var f filter.Filter
		require.NoError(t, json.Unmarshal([]byte(`{"gte":1,"lt":2}`), &f))
		require.Equal(t, filter.KindRange, f.Kind())
		lower, upper := f.Bounds()
		assert.Equal(t, filter.Included, lower.Kind)
		assert.Equal(t, filter.Excluded, upper.Kind)
	})

	t.Run("array becomes one-of", func(t *testing.T) {
		var f filter.Filter
		require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &f))
		assert.Equal(t, filter.KindOneOf, f.Kind())
		assert.Len(t, f.OneOfValues(), 2)
	})

	t.Run("prefix object becomes prefix", func(t *testing.T) {
		var f filter.Filter
		require.NoError(t, json.Unmarshal([]byte(`{"prefix":"abc"}`), &f))
		assert.Equal(t, filter.KindPrefix, f.Kind())
	})
}

func TestFilterValidate(t *testing.T) {
	t.Run("double unbounded range is invalid", func(t *testing.T) {
		f := filter.Range(filter.UnboundedBound(), filter.UnboundedBound())
		assert.Error(t, f.Validate())
	})

	t.Run("single-bound range is valid", func(t *testing.T) {
		f := filter.Range(filter.IncludedBound(value.Int(1)), filter.UnboundedBound())
		assert.NoError(t, f.Validate())
	})
}

func TestSetValidate(t *testing.T) {
	t.Run("propagates invalid filter from any conjunction", func(t *testing.T) {
		set := filter.Set{
			{filter.Index("dateCreated"): filter.Range(filter.UnboundedBound(), filter.UnboundedBound())},
		}
		assert.Error(t, set.Validate())
	})
}

func TestKeyTagging(t *testing.T) {
	t.Run("index and tag keys with the same name are distinct", func(t *testing.T) {
		idx := filter.Index("status")
		tag := filter.Tag("status")
		assert.NotEqual(t, idx, tag)
		assert.False(t, idx.IsTag())
		assert.True(t, tag.IsTag())
	})
}

func TestSortOrder(t *testing.T) {
	t.Run("default sort ends in cid tiebreak", func(t *testing.T) {
		s := filter.DefaultSort()
		order := s.Order()
		require.Len(t, order, 2)
		assert.Equal(t, "cid", order[1].Field)
	})

	t.Run("watermark sort has no tiebreak", func(t *testing.T) {
		s := filter.Sort{Field: filter.SortWatermark, Ascending: true}
		order := s.Order()
		require.Len(t, order, 1)
		assert.Equal(t, "watermark", order[0].Field)
	})
}

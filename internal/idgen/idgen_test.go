package idgen

import (
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMonotonic(t *testing.T) {
	t.Run("successive ids from the same generator strictly increase", func(t *testing.T) {
		g := New()
		prev, err := g.Generate()
		require.NoError(t, err)
		for i := 0; i < 1000; i++ {
			next, err := g.Generate()
			require.NoError(t, err)
			assert.Equal(t, 1, next.Compare(prev), "ulid %d did not increase over %d", i, i-1)
			prev = next
		}
	})

	t.Run("ids remain strictly increasing under concurrent generation", func(t *testing.T) {
		g := New()
		const n = 200
		ids := make([]ulid.ULID, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id, err := g.Generate()
				require.NoError(t, err)
				ids[i] = id
			}(i)
		}
		wg.Wait()

		seen := map[ulid.ULID]bool{}
		for _, id := range ids {
			assert.False(t, seen[id], "duplicate ulid generated under concurrency")
			seen[id] = true
		}
	})

	t.Run("monotonic even across a clock that does not advance", func(t *testing.T) {
		frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		g := New()
		g.now = func() time.Time { return frozen }

		a, err := g.Generate()
		require.NoError(t, err)
		b, err := g.Generate()
		require.NoError(t, err)
		assert.Equal(t, 1, b.Compare(a))
	})
}

func TestWatermarkAndTaskIDAreIndependentSequences(t *testing.T) {
	t.Run("package-level helpers produce parseable ulids", func(t *testing.T) {
		w, err := Watermark()
		require.NoError(t, err)
		_, err = ulid.Parse(w)
		assert.NoError(t, err)

		id, err := TaskID()
		require.NoError(t, err)
		_, err = ulid.Parse(id)
		assert.NoError(t, err)
	})
}

package drivertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/store/driver"
	"github.com/hookdeck/dwn-go/internal/value"
)

func testMessageStorePagination(t *testing.T, newHarness HarnessMaker) {
	ctx := context.Background()
	h, err := newHarness(ctx, t)
	require.NoError(t, err)
	defer h.Close()

	store, err := h.MakeMessageStore(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Open(ctx))
	defer store.Close(ctx)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	const total = 5
	for i := 0; i < total; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		msg := writeMessage("bafyreigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbz"+string(rune('a'+i))+string(rune('a'+i)), ts)
		_, err := store.Put(ctx, "tenant-a", msg, driver.Indexes{"messageTimestamp": value.DateTime(ts)}, driver.Tags{})
		require.NoError(t, err)
	}

	var (
		seen   int
		cursor *filter.Cursor
	)
	for page := 0; page < total+1; page++ {
		got, next, err := store.Query(ctx, "tenant-a", nil, filter.DefaultSort(), filter.Pagination{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		seen += len(got)
		if next == nil {
			break
		}
		cursor = next
	}
	assert.Equal(t, total, seen)
}

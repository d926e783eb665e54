package memstore

import (
	"context"
	"testing"

	gocid "github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeCID(t *testing.T, seed string) gocid.Cid {
	t.Helper()
	sum, err := mh.Sum([]byte(seed), mh.SHA2_256, -1)
	require.NoError(t, err)
	return gocid.NewCidV1(gocid.Raw, sum)
}

func TestEventLogAppendOrdersByWatermark(t *testing.T) {
	ctx := context.Background()
	l := NewEventLog()
	require.NoError(t, l.Open(ctx))

	cids := make([]gocid.Cid, 5)
	for i := range cids {
		cids[i] = fakeCID(t, "event-"+string(rune('a'+i)))
		require.NoError(t, l.Append(ctx, "tenant-a", cids[i], nil, nil))
	}

	got, cursor, err := l.GetEvents(ctx, "tenant-a", nil)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.NotNil(t, cursor, "always_cursor should emit a cursor even without pagination")

	for i, c := range got {
		assert.True(t, c.Equals(cids[i]), "event %d out of watermark order", i)
	}
}

func TestEventLogTenancyIsolation(t *testing.T) {
	ctx := context.Background()
	l := NewEventLog()
	require.NoError(t, l.Open(ctx))

	c := fakeCID(t, "only-tenant-a")
	require.NoError(t, l.Append(ctx, "tenant-a", c, nil, nil))

	got, _, err := l.GetEvents(ctx, "tenant-b", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEventLogCursorContinuation(t *testing.T) {
	ctx := context.Background()
	l := NewEventLog()
	require.NoError(t, l.Open(ctx))

	var cids []gocid.Cid
	for i := 0; i < 3; i++ {
		c := fakeCID(t, "seq-"+string(rune('a'+i)))
		cids = append(cids, c)
		require.NoError(t, l.Append(ctx, "tenant-a", c, nil, nil))
	}

	first, cursor, err := l.GetEvents(ctx, "tenant-a", nil)
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, cursor)

	rest, cursor2, err := l.GetEvents(ctx, "tenant-a", cursor)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Nil(t, cursor2)
}

func TestEventLogDelete(t *testing.T) {
	ctx := context.Background()
	l := NewEventLog()
	require.NoError(t, l.Open(ctx))

	c := fakeCID(t, "to-delete")
	require.NoError(t, l.Append(ctx, "tenant-a", c, nil, nil))
	require.NoError(t, l.Delete(ctx, "tenant-a", []gocid.Cid{c}))

	got, _, err := l.GetEvents(ctx, "tenant-a", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

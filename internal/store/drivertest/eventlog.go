package drivertest

import (
	"context"
	"testing"

	gocid "github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookdeck/dwn-go/internal/store/driver"
)

func fakeCID(t *testing.T, seed string) gocid.Cid {
	t.Helper()
	sum, err := mh.Sum([]byte(seed), mh.SHA2_256, -1)
	require.NoError(t, err)
	return gocid.NewCidV1(gocid.Raw, sum)
}

func testEventLog(t *testing.T, newHarness HarnessMaker) {
	ctx := context.Background()
	h, err := newHarness(ctx, t)
	require.NoError(t, err)
	defer h.Close()

	log, err := h.MakeEventLog(ctx)
	require.NoError(t, err)
	require.NoError(t, log.Open(ctx))
	defer log.Close(ctx)

	var cids []gocid.Cid
	for i := 0; i < 3; i++ {
		c := fakeCID(t, "conformance-event-"+string(rune('a'+i)))
		cids = append(cids, c)
		require.NoError(t, log.Append(ctx, "tenant-a", c, driver.Indexes{}, driver.Tags{}))
	}

	got, cursor, err := log.GetEvents(ctx, "tenant-a", nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.NotNil(t, cursor)
	for i, c := range got {
		assert.True(t, c.Equals(cids[i]))
	}

	isolated, _, err := log.GetEvents(ctx, "tenant-b", nil)
	require.NoError(t, err)
	assert.Empty(t, isolated)

	require.NoError(t, log.Delete(ctx, "tenant-a", cids[:1]))
	remaining, _, err := log.GetEvents(ctx, "tenant-a", nil)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

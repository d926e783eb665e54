package drivertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/message"
	"github.com/hookdeck/dwn-go/internal/store/driver"
)

func writeMessage(dataCID string, ts time.Time) message.Message {
	return message.Message{
		Descriptor: message.RecordsWriteDescriptor{
			DataFormat:       "text/plain",
			DataCID:          dataCID,
			DataSize:         5,
			DateCreated:      ts,
			MessageTimestamp: ts,
		},
		Fields: message.Fields{},
	}
}

func testMessageStoreCRUD(t *testing.T, newHarness HarnessMaker) {
	ctx := context.Background()
	h, err := newHarness(ctx, t)
	require.NoError(t, err)
	defer h.Close()

	store, err := h.MakeMessageStore(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Open(ctx))
	defer store.Close(ctx)

	msg := writeMessage("bafyreigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi", time.Unix(0, 0).UTC())

	c, err := store.Put(ctx, "tenant-a", msg, driver.Indexes{}, driver.Tags{})
	require.NoError(t, err)

	got, err := store.Get(ctx, "tenant-a", c)
	require.NoError(t, err)
	assert.Equal(t, msg.Descriptor, got.Descriptor)

	_, err = store.Get(ctx, "tenant-b", c)
	assert.ErrorIs(t, err, dwnerrors.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "tenant-a", c))
	_, err = store.Get(ctx, "tenant-a", c)
	assert.ErrorIs(t, err, dwnerrors.ErrNotFound)
}

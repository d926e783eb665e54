package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookdeck/dwn-go/internal/eventbus"
	"github.com/hookdeck/dwn-go/internal/message"
	"github.com/hookdeck/dwn-go/internal/store/driver"
)

func writeMessage(t *testing.T, cid string) message.Message {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return message.Message{
		Descriptor: message.RecordsWriteDescriptor{
			DataFormat:       "text/plain",
			DataCID:          cid,
			DataSize:         5,
			DateCreated:      now,
			MessageTimestamp: now,
		},
		Fields: message.Fields{},
	}
}

func TestBusEmitDeliversToSubscribersOfTheSameTenant(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New()
	require.NoError(t, bus.Open(ctx))
	defer bus.Close(ctx)

	subA, chA, err := bus.Subscribe(ctx, "tenant-a", "sub-1", 0)
	require.NoError(t, err)
	defer subA.Close(ctx)

	_, chB, err := bus.Subscribe(ctx, "tenant-b", "sub-1", 0)
	require.NoError(t, err)

	evt := eventbus.Event{Tenant: "tenant-a", Message: writeMessage(t, "bafyreigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi")}
	require.NoError(t, bus.Emit(ctx, evt))

	select {
	case got := <-chA:
		assert.Equal(t, "tenant-a", got.Tenant)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tenant-a delivery")
	}

	select {
	case <-chB:
		t.Fatal("tenant-b listener should not receive a tenant-a event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusEmitPreservesOrderWithinASubscription(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New()
	require.NoError(t, bus.Open(ctx))
	defer bus.Close(ctx)

	_, ch, err := bus.Subscribe(ctx, "tenant-a", "sub-1", 8)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		indexes := driver.Indexes{}
		require.NoError(t, bus.Emit(ctx, eventbus.Event{
			Tenant:  "tenant-a",
			Message: writeMessage(t, string(rune('a'+i))),
			Indexes: indexes,
		}))
	}

	for i := 0; i < 5; i++ {
		select {
		case got := <-ch:
			desc := got.Message.Descriptor.(message.RecordsWriteDescriptor)
			assert.Equal(t, string(rune('a'+i)), desc.DataCID)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestSubscriptionCloseRemovesListenerAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New()
	require.NoError(t, bus.Open(ctx))
	defer bus.Close(ctx)

	sub, ch, err := bus.Subscribe(ctx, "tenant-a", "sub-1", 0)
	require.NoError(t, err)

	require.NoError(t, sub.Close(ctx))
	require.NoError(t, sub.Close(ctx))

	_, stillOpen := <-ch
	assert.False(t, stillOpen, "channel should be closed once the subscription is closed")

	require.NoError(t, bus.Emit(ctx, eventbus.Event{Tenant: "tenant-a", Message: writeMessage(t, "x")}))
}

func TestBusCloseStopsDeliveryAndClosesListeners(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New()
	require.NoError(t, bus.Open(ctx))

	_, ch, err := bus.Subscribe(ctx, "tenant-a", "sub-1", 0)
	require.NoError(t, err)

	require.NoError(t, bus.Close(ctx))
	require.NoError(t, bus.Close(ctx)) // idempotent

	_, stillOpen := <-ch
	assert.False(t, stillOpen)

	err = bus.Emit(ctx, eventbus.Event{Tenant: "tenant-a", Message: writeMessage(t, "x")})
	assert.Error(t, err)
}

func TestBusEmitFanOutIsConcurrentAcrossListeners(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New()
	require.NoError(t, bus.Open(ctx))
	defer bus.Close(ctx)

	const n = 10
	chans := make([]<-chan eventbus.Event, n)
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		_, ch, err := bus.Subscribe(ctx, "tenant-a", id, 1)
		require.NoError(t, err)
		chans[i] = ch
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for _, ch := range chans {
		ch := ch
		go func() {
			defer wg.Done()
			<-ch
		}()
	}

	done := make(chan struct{})
	go func() {
		require.NoError(t, bus.Emit(ctx, eventbus.Event{Tenant: "tenant-a", Message: writeMessage(t, "x")}))
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for concurrent fan-out")
	}
}

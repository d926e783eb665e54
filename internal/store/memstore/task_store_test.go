package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/store/driver"
)

func TestTaskStoreRegisterAndRead(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()
	require.NoError(t, s.Open(ctx))

	mt, err := s.Register(ctx, []byte("payload"), time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, mt.ID)

	got, err := s.Read(ctx, mt.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got.Task)
}

func TestTaskStoreGrabOnlySelectsExpiredTasks(t *testing.T) {
	ctx := context.Background()
	impl := &taskStore{tasks: make(map[string]*driver.ManagedTask), opened: true}
	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return frozen }

	_, err := impl.Register(ctx, []byte("expired"), -time.Second)
	require.NoError(t, err)
	_, err = impl.Register(ctx, []byte("not-due"), time.Hour)
	require.NoError(t, err)

	grabbed, err := impl.Grab(ctx, 10)
	require.NoError(t, err)
	require.Len(t, grabbed, 1)
	assert.Equal(t, []byte("expired"), grabbed[0].Task)
	assert.True(t, grabbed[0].Timeout.Equal(frozen.Add(driver.LeaseWindow)))
}

func TestTaskStoreGrabRespectsCount(t *testing.T) {
	ctx := context.Background()
	impl := &taskStore{tasks: make(map[string]*driver.ManagedTask), opened: true}
	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return frozen }

	for i := 0; i < 5; i++ {
		_, err := impl.Register(ctx, []byte("t"), -time.Second)
		require.NoError(t, err)
	}

	grabbed, err := impl.Grab(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, grabbed, 2)
}

func TestTaskStoreExtendAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()
	require.NoError(t, s.Open(ctx))

	mt, err := s.Register(ctx, []byte("payload"), time.Minute)
	require.NoError(t, err)

	require.NoError(t, s.Extend(ctx, mt.ID, 2*time.Minute))

	require.NoError(t, s.Delete(ctx, mt.ID))
	_, err = s.Read(ctx, mt.ID)
	assert.ErrorIs(t, err, dwnerrors.ErrNotFound)
}

func TestTaskStoreExtendUnknownID(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()
	require.NoError(t, s.Open(ctx))

	err := s.Extend(ctx, "does-not-exist", time.Minute)
	assert.ErrorIs(t, err, dwnerrors.ErrNotFound)
}

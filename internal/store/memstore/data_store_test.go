package memstore

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataStorePutGet(t *testing.T) {
	ctx := context.Background()
	s := NewDataStore()
	require.NoError(t, s.Open(ctx))

	c := fakeCID(t, "blob-1")
	res, err := s.Put(ctx, "tenant-a", "record-1", c, bytes.NewReader([]byte("hello world")))
	require.NoError(t, err)
	assert.Equal(t, int64(11), res.Size)

	got, err := s.Get(ctx, "tenant-a", "record-1", c)
	require.NoError(t, err)
	require.True(t, got.Found)
	assert.Equal(t, int64(11), got.Size)

	data, err := io.ReadAll(got.Stream)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestDataStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	s := NewDataStore()
	require.NoError(t, s.Open(ctx))

	c := fakeCID(t, "missing")
	got, err := s.Get(ctx, "tenant-a", "record-1", c)
	require.NoError(t, err)
	assert.False(t, got.Found)
}

func TestDataStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewDataStore()
	require.NoError(t, s.Open(ctx))

	c := fakeCID(t, "blob-2")
	_, err := s.Put(ctx, "tenant-a", "record-1", c, bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "tenant-a", "record-1", c))

	got, err := s.Get(ctx, "tenant-a", "record-1", c)
	require.NoError(t, err)
	assert.False(t, got.Found)
}

func TestDataStoreTenancyIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewDataStore()
	require.NoError(t, s.Open(ctx))

	c := fakeCID(t, "blob-3")
	_, err := s.Put(ctx, "tenant-a", "record-1", c, bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	got, err := s.Get(ctx, "tenant-b", "record-1", c)
	require.NoError(t, err)
	assert.False(t, got.Found)
}

package cid_test

import (
	"testing"

	"github.com/hookdeck/dwn-go/internal/cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	t.Run("same bytes produce same cid", func(t *testing.T) {
		a, err := cid.Of([]byte(`{"hello":"world"}`))
		require.NoError(t, err)
		b, err := cid.Of([]byte(`{"hello":"world"}`))
		require.NoError(t, err)
		assert.True(t, a.Equals(b))
	})

	t.Run("different bytes produce different cids", func(t *testing.T) {
		a, err := cid.Of([]byte("foo"))
		require.NoError(t, err)
		b, err := cid.Of([]byte("bar"))
		require.NoError(t, err)
		assert.False(t, a.Equals(b))
	})

	t.Run("produces a CIDv1 dag-cbor identifier", func(t *testing.T) {
		c, err := cid.Of([]byte("foo"))
		require.NoError(t, err)
		assert.EqualValues(t, 1, c.Version())
		assert.Equal(t, cid.Codec, c.Type())
	})
}

func TestStringParseRoundtrip(t *testing.T) {
	c, err := cid.Of([]byte("round-trip me"))
	require.NoError(t, err)

	s := cid.String(c)
	assert.NotEmpty(t, s)

	parsed, err := cid.Parse(s)
	require.NoError(t, err)
	assert.True(t, c.Equals(parsed))
}

func TestParseRejectsWrongCodec(t *testing.T) {
	// "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi" is a well-known
	// CIDv1 raw-codec identifier for the empty byte string.
	_, err := cid.Parse("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi")
	require.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := cid.Parse("not a cid")
	require.Error(t, err)
}

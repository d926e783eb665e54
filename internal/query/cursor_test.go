package query_test

import (
	"testing"

	gocid "github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dwncid "github.com/hookdeck/dwn-go/internal/cid"
	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/query"
	"github.com/hookdeck/dwn-go/internal/value"
)

func cidFor(t *testing.T, seed string) gocid.Cid {
	t.Helper()
	c, err := dwncid.Of([]byte(seed))
	require.NoError(t, err)
	return c
}

func TestEncodeDecodeCursorRoundTrips(t *testing.T) {
	c := filter.Cursor{Value: value.String("position-1"), CID: cidFor(t, "a")}

	encoded, err := query.EncodeCursor(query.ResourceRecordsQuery, c)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)

	decoded, err := query.DecodeCursor(query.ResourceRecordsQuery, encoded)
	require.NoError(t, err)
	assert.True(t, value.Equal(c.Value, decoded.Value))
	assert.Equal(t, c.CID.String(), decoded.CID.String())
}

func TestDecodeCursorWrongResourceIsInvalid(t *testing.T) {
	c := filter.Cursor{Value: value.String("position-1"), CID: cidFor(t, "a")}

	encoded, err := query.EncodeCursor(query.ResourceRecordsQuery, c)
	require.NoError(t, err)

	_, err = query.DecodeCursor(query.ResourceMessagesQuery, encoded)
	require.Error(t, err)
	assert.ErrorIs(t, err, dwnerrors.ErrInvalidCursor)
}

func TestDecodeCursorMalformedIsInvalid(t *testing.T) {
	_, err := query.DecodeCursor(query.ResourceRecordsQuery, "!!!not-a-cursor!!!")
	require.Error(t, err)
	assert.ErrorIs(t, err, dwnerrors.ErrInvalidCursor)
}

func TestDecodeCursorEmptyStringIsZeroValue(t *testing.T) {
	decoded, err := query.DecodeCursor(query.ResourceRecordsQuery, "")
	require.NoError(t, err)
	assert.Equal(t, filter.Cursor{}, decoded)
}

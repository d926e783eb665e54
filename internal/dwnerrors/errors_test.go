package dwnerrors_test

import (
	"errors"
	"testing"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/stretchr/testify/assert"
)

func TestWrappers(t *testing.T) {
	t.Run("backend error unwraps to the underlying cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := dwnerrors.Backend("put", cause)
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "put")
	})

	t.Run("nil cause produces nil error", func(t *testing.T) {
		assert.NoError(t, dwnerrors.Backend("put", nil))
		assert.NoError(t, dwnerrors.Encoding(nil))
		assert.NoError(t, dwnerrors.Decoding(nil))
		assert.NoError(t, dwnerrors.Filter(nil))
		assert.NoError(t, dwnerrors.Query(nil))
	})
}

func TestCidMismatchIsNotFound(t *testing.T) {
	t.Run("matches ErrNotFound via errors.Is", func(t *testing.T) {
		err := dwnerrors.CidMismatch("bafy1", "bafy2")
		assert.True(t, errors.Is(err, dwnerrors.ErrNotFound))
		assert.Contains(t, err.Error(), "bafy1")
		assert.Contains(t, err.Error(), "bafy2")
	})
}

package message_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hookdeck/dwn-go/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMessage(t *testing.T) message.Message {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return message.Message{
		Descriptor: message.RecordsWriteDescriptor{
			DataFormat:       "text/plain",
			DataCID:          "bafyreigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
			DataSize:         5,
			DateCreated:      now,
			MessageTimestamp: now,
		},
		Fields: message.Fields{},
	}
}

func TestMessageRoundTrip(t *testing.T) {
	t.Run("records write round-trips through JSON", func(t *testing.T) {
		msg := writeMessage(t)

		data, err := json.Marshal(msg)
		require.NoError(t, err)

		var decoded message.Message
		require.NoError(t, json.Unmarshal(data, &decoded))

		desc, ok := decoded.Descriptor.(message.RecordsWriteDescriptor)
		require.True(t, ok)
		assert.Equal(t, "text/plain", desc.DataFormat)
		assert.EqualValues(t, 5, desc.DataSize)
	})

	t.Run("descriptor carries explicit interface and method tags", func(t *testing.T) {
		msg := writeMessage(t)
		data, err := json.Marshal(msg)
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		desc, ok := raw["descriptor"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Records", desc["interface"])
		assert.Equal(t, "Write", desc["method"])
	})

	t.Run("fields flatten onto the top-level object", func(t *testing.T) {
		msg := writeMessage(t)
		msg.Fields.RecordID = "record-1"

		data, err := json.Marshal(msg)
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "record-1", raw["recordId"])
		_, hasDescriptor := raw["descriptor"]
		assert.True(t, hasDescriptor)
	})
}

func TestMessageCID(t *testing.T) {
	t.Run("identical messages produce identical cids", func(t *testing.T) {
		a, err := writeMessage(t).CID()
		require.NoError(t, err)
		b, err := writeMessage(t).CID()
		require.NoError(t, err)
		assert.True(t, a.Equals(b))
	})

	t.Run("different messages produce different cids", func(t *testing.T) {
		a, err := writeMessage(t).CID()
		require.NoError(t, err)

		other := writeMessage(t)
		other.Descriptor = message.RecordsWriteDescriptor{
			DataFormat:       "application/json",
			DataCID:          "bafyreigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
			DataSize:         5,
			DateCreated:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			MessageTimestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		b, err := other.CID()
		require.NoError(t, err)

		assert.False(t, a.Equals(b))
	})

	t.Run("inline data field is excluded from the cid", func(t *testing.T) {
		withData := writeMessage(t)
		withData.Fields.EncodedData = "aGVsbG8"

		withoutData := writeMessage(t)

		a, err := withData.CID()
		require.NoError(t, err)
		b, err := withoutData.CID()
		require.NoError(t, err)
		assert.True(t, a.Equals(b))
	})
}

func TestRecordsDeleteDescriptor(t *testing.T) {
	t.Run("prune and protocolRole are independent fields", func(t *testing.T) {
		msg := message.Message{
			Descriptor: message.RecordsDeleteDescriptor{
				MessageTimestamp: time.Now().UTC(),
				RecordID:         "record-1",
				Prune:            true,
			},
		}
		data, err := json.Marshal(msg)
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(data, &raw))
		desc := raw["descriptor"].(map[string]any)
		assert.Equal(t, true, desc["prune"])
		_, hasProtocolRole := desc["protocolRole"]
		assert.False(t, hasProtocolRole)
	})
}

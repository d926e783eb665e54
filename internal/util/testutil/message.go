package testutil

import (
	"time"

	"github.com/hookdeck/dwn-go/internal/cid"
	"github.com/hookdeck/dwn-go/internal/message"
	"github.com/hookdeck/dwn-go/internal/value"
)

// valueTags converts a plain Go map into the value.Value-typed tag map
// RecordsWriteDescriptor.Tags expects, dispatching on the Go type of each
// entry.
func valueTags(tags map[string]any) map[string]value.Value {
	out := make(map[string]value.Value, len(tags))
	for k, v := range tags {
		switch tv := v.(type) {
		case string:
			out[k] = value.String(tv)
		case int:
			out[k] = value.Int(int64(tv))
		case int64:
			out[k] = value.Int(tv)
		case float64:
			out[k] = value.Float(tv)
		case bool:
			out[k] = value.Bool(tv)
		default:
			out[k] = value.Null()
		}
	}
	return out
}

// ============================== Mock Message ==============================

var MessageFactory = &mockMessageFactory{}

type mockMessageFactory struct {
}

// Any returns a RecordsWrite message with sensible defaults: every required
// field of RecordsWriteDescriptor populated, a real CID over the default
// data payload, and an empty Fields body.
func (f *mockMessageFactory) Any(opts ...func(*message.Message)) message.Message {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dataCID, _ := cid.Of([]byte("test-data"))

	msg := message.Message{
		Descriptor: message.RecordsWriteDescriptor{
			DataFormat:       "text/plain",
			DataCID:          cid.String(dataCID),
			DataSize:         9,
			DateCreated:      now,
			MessageTimestamp: now,
		},
		Fields: message.Fields{
			RecordID: "test-record",
		},
	}

	for _, opt := range opts {
		opt(&msg)
	}

	return msg
}

func (f *mockMessageFactory) AnyPointer(opts ...func(*message.Message)) *message.Message {
	msg := f.Any(opts...)
	return &msg
}

func (f *mockMessageFactory) recordsWrite(msg *message.Message) *message.RecordsWriteDescriptor {
	d, ok := msg.Descriptor.(message.RecordsWriteDescriptor)
	if !ok {
		return nil
	}
	return &d
}

func (f *mockMessageFactory) WithRecordID(recordID string) func(*message.Message) {
	return func(msg *message.Message) {
		msg.Fields.RecordID = recordID
	}
}

func (f *mockMessageFactory) WithContextID(contextID string) func(*message.Message) {
	return func(msg *message.Message) {
		msg.Fields.ContextID = contextID
	}
}

func (f *mockMessageFactory) WithProtocol(protocol, protocolPath string) func(*message.Message) {
	return func(msg *message.Message) {
		d := f.recordsWrite(msg)
		if d == nil {
			return
		}
		d.Protocol = protocol
		d.ProtocolPath = protocolPath
		msg.Descriptor = *d
	}
}

func (f *mockMessageFactory) WithSchema(schema string) func(*message.Message) {
	return func(msg *message.Message) {
		d := f.recordsWrite(msg)
		if d == nil {
			return
		}
		d.Schema = schema
		msg.Descriptor = *d
	}
}

func (f *mockMessageFactory) WithDataCID(dataCID string, dataSize uint64) func(*message.Message) {
	return func(msg *message.Message) {
		d := f.recordsWrite(msg)
		if d == nil {
			return
		}
		d.DataCID = dataCID
		d.DataSize = dataSize
		msg.Descriptor = *d
	}
}

func (f *mockMessageFactory) WithDateCreated(t time.Time) func(*message.Message) {
	return func(msg *message.Message) {
		d := f.recordsWrite(msg)
		if d == nil {
			return
		}
		d.DateCreated = t
		d.MessageTimestamp = t
		msg.Descriptor = *d
	}
}

func (f *mockMessageFactory) WithPublished(published bool) func(*message.Message) {
	return func(msg *message.Message) {
		d := f.recordsWrite(msg)
		if d == nil {
			return
		}
		d.Published = &published
		msg.Descriptor = *d
	}
}

func (f *mockMessageFactory) WithTags(tags map[string]any) func(*message.Message) {
	return func(msg *message.Message) {
		d := f.recordsWrite(msg)
		if d == nil {
			return
		}
		d.Tags = valueTags(tags)
		msg.Descriptor = *d
	}
}

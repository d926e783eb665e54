package message

import (
	"encoding/json"
	"time"

	gocid "github.com/ipfs/go-cid"

	"github.com/hookdeck/dwn-go/internal/filter"
)

// MessagesFilter narrows a Messages·Query/Subscribe to an interface, method
// and/or protocol, optionally bounded by messageTimestamp.
type MessagesFilter struct {
	Interface        *Interface `json:"interface,omitempty"`
	Method           *Method    `json:"method,omitempty"`
	Protocol         string     `json:"protocol,omitempty"`
	MessageTimestamp *time.Time `json:"messageTimestamp,omitempty"`
}

// MessagesReadDescriptor fetches a single message by its own CID.
type MessagesReadDescriptor struct {
	MessageTimestamp time.Time  `json:"messageTimestamp"`
	MessageCID       *gocid.Cid `json:"messageCid,omitempty"`
}

func (MessagesReadDescriptor) Interface() Interface { return InterfaceMessages }
func (MessagesReadDescriptor) Method() Method       { return MethodRead }

// MessagesQueryDescriptor queries the event log directly (as opposed to
// Records·Query, which queries the message store).
type MessagesQueryDescriptor struct {
	MessageTimestamp time.Time        `json:"messageTimestamp"`
	Filters          []MessagesFilter `json:"filters,omitempty"`
	Cursor           *filter.Cursor   `json:"cursor,omitempty"`
}

func (MessagesQueryDescriptor) Interface() Interface { return InterfaceMessages }
func (MessagesQueryDescriptor) Method() Method       { return MethodQuery }

// MessagesSubscribeDescriptor opens a subscription over the event log.
type MessagesSubscribeDescriptor struct {
	MessageTimestamp time.Time        `json:"messageTimestamp"`
	Filters          []MessagesFilter `json:"filters,omitempty"`
}

func (MessagesSubscribeDescriptor) Interface() Interface { return InterfaceMessages }
func (MessagesSubscribeDescriptor) Method() Method       { return MethodSubscribe }

func unmarshalMessagesDescriptor(method Method, data json.RawMessage) (Descriptor, error) {
	switch method {
	case MethodRead:
		var d MessagesReadDescriptor
		return d, json.Unmarshal(data, &d)
	case MethodQuery:
		var d MessagesQueryDescriptor
		return d, json.Unmarshal(data, &d)
	case MethodSubscribe:
		var d MessagesSubscribeDescriptor
		return d, json.Unmarshal(data, &d)
	default:
		return nil, unknownMethodError(InterfaceMessages, method)
	}
}

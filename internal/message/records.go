package message

import (
	"encoding/json"
	"time"

	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/value"
)

// RecordsFilter is the filter shape accepted by Records·Read/Query/Subscribe.
type RecordsFilter struct {
	Author        []string                 `json:"author,omitempty"`
	Attester      string                   `json:"attester,omitempty"`
	Recipient     []string                 `json:"recipient,omitempty"`
	Protocol      string                   `json:"protocol,omitempty"`
	ProtocolPath  string                   `json:"protocolPath,omitempty"`
	Published     *bool                    `json:"published,omitempty"`
	ContextID     string                   `json:"contextId,omitempty"`
	Schema        string                   `json:"schema,omitempty"`
	Tags          map[string]filter.Filter `json:"tags,omitempty"`
	RecordID      string                   `json:"recordId,omitempty"`
	ParentID      string                   `json:"parentId,omitempty"`
	DataFormat    string                   `json:"dataFormat,omitempty"`
	DataSize      *filter.Filter           `json:"dataSize,omitempty"`
	DataCID       string                   `json:"dataCid,omitempty"`
	DateCreated   *filter.Filter           `json:"dateCreated,omitempty"`
	DatePublished *filter.Filter           `json:"datePublished,omitempty"`
	DateUpdated   *filter.Filter           `json:"dateUpdated,omitempty"`
}

// DateSort names the Records·Query sort options.
type DateSort string

const (
	DateSortCreatedAscending    DateSort = "createdAscending"
	DateSortCreatedDescending   DateSort = "createdDescending"
	DateSortPublishedAscending  DateSort = "publishedAscending"
	DateSortPublishedDescending DateSort = "publishedDescending"
)

// RecordsReadDescriptor reads a record by filter (typically recordId).
type RecordsReadDescriptor struct {
	MessageTimestamp time.Time     `json:"messageTimestamp"`
	Filter           RecordsFilter `json:"filter"`
}

func (RecordsReadDescriptor) Interface() Interface { return InterfaceRecords }
func (RecordsReadDescriptor) Method() Method       { return MethodRead }

// RecordsQueryDescriptor queries records matching filter.
type RecordsQueryDescriptor struct {
	MessageTimestamp time.Time          `json:"messageTimestamp"`
	Filter           RecordsFilter      `json:"filter"`
	DateSort         *DateSort          `json:"dateSort,omitempty"`
	Pagination       *filter.Pagination `json:"pagination,omitempty"`
}

func (RecordsQueryDescriptor) Interface() Interface { return InterfaceRecords }
func (RecordsQueryDescriptor) Method() Method       { return MethodQuery }

// RecordsWriteDescriptor writes (creates or updates) a record.
type RecordsWriteDescriptor struct {
	Protocol         string                 `json:"protocol,omitempty"`
	ProtocolPath     string                 `json:"protocolPath,omitempty"`
	Recipient        string                 `json:"recipient,omitempty"`
	Schema           string                 `json:"schema,omitempty"`
	Tags             map[string]value.Value `json:"tags,omitempty"`
	ParentID         string                 `json:"parentId,omitempty"`
	DataCID          string                 `json:"dataCid"`
	DataSize         uint64                 `json:"dataSize"`
	DateCreated      time.Time              `json:"dateCreated"`
	MessageTimestamp time.Time              `json:"messageTimestamp"`
	Published        *bool                  `json:"published,omitempty"`
	DatePublished    *time.Time             `json:"datePublished,omitempty"`
	DataFormat       string                 `json:"dataFormat"`
}

func (RecordsWriteDescriptor) Interface() Interface { return InterfaceRecords }
func (RecordsWriteDescriptor) Method() Method       { return MethodWrite }

// RecordsDeleteDescriptor tombstones a record. Prune controls whether
// descendant records under the same contextId are cascade-deleted too;
// it shares no name with ProtocolRole despite both appearing on the
// delete parameters, avoiding the upstream rename collision.
type RecordsDeleteDescriptor struct {
	MessageTimestamp time.Time `json:"messageTimestamp"`
	RecordID         string    `json:"recordId"`
	Prune            bool      `json:"prune"`
}

func (RecordsDeleteDescriptor) Interface() Interface { return InterfaceRecords }
func (RecordsDeleteDescriptor) Method() Method       { return MethodDelete }

// RecordsSubscribeDescriptor opens a subscription over matching records.
type RecordsSubscribeDescriptor struct {
	MessageTimestamp time.Time     `json:"messageTimestamp"`
	Filter           RecordsFilter `json:"filter"`
}

func (RecordsSubscribeDescriptor) Interface() Interface { return InterfaceRecords }
func (RecordsSubscribeDescriptor) Method() Method       { return MethodSubscribe }

func unmarshalRecordsDescriptor(method Method, data json.RawMessage) (Descriptor, error) {
	switch method {
	case MethodRead:
		var d RecordsReadDescriptor
		return d, json.Unmarshal(data, &d)
	case MethodQuery:
		var d RecordsQueryDescriptor
		return d, json.Unmarshal(data, &d)
	case MethodWrite:
		var d RecordsWriteDescriptor
		return d, json.Unmarshal(data, &d)
	case MethodDelete:
		var d RecordsDeleteDescriptor
		return d, json.Unmarshal(data, &d)
	case MethodSubscribe:
		var d RecordsSubscribeDescriptor
		return d, json.Unmarshal(data, &d)
	default:
		return nil, unknownMethodError(InterfaceRecords, method)
	}
}

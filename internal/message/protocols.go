package message

import (
	"encoding/json"
	"time"
)

// ProtocolsConfigureDescriptor installs or updates a protocol definition.
type ProtocolsConfigureDescriptor struct {
	MessageTimestamp time.Time          `json:"messageTimestamp"`
	Definition       ProtocolDefinition `json:"definition"`
}

func (ProtocolsConfigureDescriptor) Interface() Interface { return InterfaceProtocols }
func (ProtocolsConfigureDescriptor) Method() Method       { return MethodConfigure }

// ProtocolsQueryDescriptor looks up installed protocol definitions.
type ProtocolsQueryDescriptor struct {
	MessageTimestamp time.Time             `json:"messageTimestamp"`
	Filter           *ProtocolsQueryFilter `json:"filter,omitempty"`
}

func (ProtocolsQueryDescriptor) Interface() Interface { return InterfaceProtocols }
func (ProtocolsQueryDescriptor) Method() Method       { return MethodQuery }

// ProtocolsQueryFilter narrows a Protocols·Query to a protocol URI and/or
// recipient DID.
type ProtocolsQueryFilter struct {
	Protocol  string `json:"protocol,omitempty"`
	Recipient string `json:"recipient,omitempty"`
}

// ProtocolDefinition is the full protocol document: its type registry and
// authorization/action structure tree.
type ProtocolDefinition struct {
	Protocol  string                   `json:"protocol"`
	Published bool                     `json:"published"`
	Types     map[string]*ProtocolType `json:"types"`
	Structure map[string]ProtocolRule  `json:"structure"`
}

// ProtocolType constrains the schema and data formats a record type may use.
type ProtocolType struct {
	Schema      string   `json:"schema,omitempty"`
	DataFormats []string `json:"dataFormats,omitempty"`
}

// ProtocolRule describes one node of the protocol's structure tree: who may
// act on records at this path, how they're encrypted, and tag constraints.
// Nested record types live under arbitrary keys in Extra, mirroring the
// recursive `$encryption`/`$actions`/`$role`/`$size`/`$tags` sidecar keys
// alongside plain nested type names.
type ProtocolRule struct {
	Encryption *ProtocolEncryption     `json:"$encryption,omitempty"`
	Actions    []ProtocolAction        `json:"$actions,omitempty"`
	Role       *bool                   `json:"$role,omitempty"`
	Size       *ProtocolSize           `json:"$size,omitempty"`
	Tags       *ProtocolTags           `json:"$tags,omitempty"`
	Extra      map[string]ProtocolRule `json:"-"`
}

// MarshalJSON flattens Extra's nested rule entries alongside the $-prefixed
// sidecar fields, matching the source's #[serde(flatten)] on the same field.
func (r ProtocolRule) MarshalJSON() ([]byte, error) {
	type alias ProtocolRule
	base, err := json.Marshal(alias(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return base, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		m[k] = vb
	}
	return json.Marshal(m)
}

func (r *ProtocolRule) UnmarshalJSON(data []byte) error {
	type alias ProtocolRule
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	extra := make(map[string]ProtocolRule)
	for k, v := range m {
		if k == "$encryption" || k == "$actions" || k == "$role" || k == "$size" || k == "$tags" {
			continue
		}
		var nested ProtocolRule
		if err := json.Unmarshal(v, &nested); err != nil {
			return err
		}
		extra[k] = nested
	}
	a.Extra = extra
	*r = ProtocolRule(a)
	return nil
}

// ProtocolEncryption names the root key a path's records are encrypted
// under.
type ProtocolEncryption struct {
	RootKeyID    string `json:"rootKeyId"`
	PublicKeyJWK any    `json:"publicKeyJwk"`
}

// Who names the party an action rule grants to.
type Who string

const (
	WhoAnyone    Who = "anyone"
	WhoAuthor    Who = "author"
	WhoRecipient Who = "recipient"
)

// Can names a permitted operation in an action rule.
type Can string

const (
	CanCoDelete  Can = "co-delete"
	CanCoPrune   Can = "co-prune"
	CanCoUpdate  Can = "co-update"
	CanCreate    Can = "create"
	CanDelete    Can = "delete"
	CanPrune     Can = "prune"
	CanRead      Can = "read"
	CanUpdate    Can = "update"
	CanSubscribe Can = "subscribe"
	CanQuery     Can = "query"
)

// ProtocolAction grants Can operations either to a Who party (optionally
// scoped to another path via Of) or to a role path.
type ProtocolAction struct {
	Who  *Who   `json:"who,omitempty"`
	Of   string `json:"of,omitempty"`
	Role string `json:"role,omitempty"`
	Can  []Can  `json:"can"`
}

// ProtocolSize bounds a record's data size in bytes.
type ProtocolSize struct {
	Min *uint64 `json:"min,omitempty"`
	Max *uint64 `json:"max,omitempty"`
}

// ProtocolTags constrains which tags a record at this path may/must carry.
type ProtocolTags struct {
	RequiredTags       []string               `json:"$requiredTags,omitempty"`
	AllowUndefinedTags *bool                  `json:"$allowUndefinedTags,omitempty"`
	Tags               map[string]ProvidedTag `json:"-"`
}

func (t ProtocolTags) MarshalJSON() ([]byte, error) {
	type alias ProtocolTags
	base, err := json.Marshal(alias(t))
	if err != nil {
		return nil, err
	}
	if len(t.Tags) == 0 {
		return base, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range t.Tags {
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		m[k] = vb
	}
	return json.Marshal(m)
}

func (t *ProtocolTags) UnmarshalJSON(data []byte) error {
	type alias ProtocolTags
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	tags := make(map[string]ProvidedTag)
	for k, v := range m {
		if k == "$requiredTags" || k == "$allowUndefinedTags" {
			continue
		}
		var pt ProvidedTag
		if err := json.Unmarshal(v, &pt); err != nil {
			return err
		}
		tags[k] = pt
	}
	a.Tags = tags
	*t = ProtocolTags(a)
	return nil
}

// TagType names the JSON Schema type a provided tag must validate against.
type TagType string

const (
	TagTypeString  TagType = "string"
	TagTypeNumber  TagType = "number"
	TagTypeInteger TagType = "integer"
	TagTypeBoolean TagType = "boolean"
	TagTypeArray   TagType = "array"
)

// ProvidedTag is a JSON-Schema-like constraint on one tag value.
type ProvidedTag struct {
	Type             TagType  `json:"type"`
	Items            *TagItem `json:"items,omitempty"`
	Contains         *TagItem `json:"contains,omitempty"`
	Enum             []string `json:"enum,omitempty"`
	MaxLength        *uint64  `json:"maxLength,omitempty"`
	MinLength        *uint64  `json:"minLength,omitempty"`
	Minimum          *uint64  `json:"minimum,omitempty"`
	Maximum          *uint64  `json:"maximum,omitempty"`
	ExclusiveMinimum *uint64  `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *uint64  `json:"exclusiveMaximum,omitempty"`
	MinItems         *uint64  `json:"minItems,omitempty"`
	MaxItems         *uint64  `json:"maxItems,omitempty"`
	UniqueItems      *bool    `json:"uniqueItems,omitempty"`
	MinContains      *uint64  `json:"minContains,omitempty"`
	MaxContains      *uint64  `json:"maxContains,omitempty"`
}

// TagItem constrains the elements of an array-typed tag.
type TagItem struct {
	Type             TagType  `json:"type"`
	Enum             []string `json:"enum,omitempty"`
	Minimum          *uint64  `json:"minimum,omitempty"`
	Maximum          *uint64  `json:"maximum,omitempty"`
	ExclusiveMinimum *uint64  `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *uint64  `json:"exclusiveMaximum,omitempty"`
	MinLength        *uint64  `json:"minLength,omitempty"`
	MaxLength        *uint64  `json:"maxLength,omitempty"`
}

func unmarshalProtocolsDescriptor(method Method, data json.RawMessage) (Descriptor, error) {
	switch method {
	case MethodConfigure:
		var d ProtocolsConfigureDescriptor
		return d, json.Unmarshal(data, &d)
	case MethodQuery:
		var d ProtocolsQueryDescriptor
		return d, json.Unmarshal(data, &d)
	default:
		return nil, unknownMethodError(InterfaceProtocols, method)
	}
}

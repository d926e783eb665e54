// Package message implements the DWN Message data model: a tagged-union
// Descriptor over interface x method, and a polymorphic Fields body, both
// serializing to the wire shape the rest of the system persists and
// addresses by CID.
package message

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Interface names one of the three DWN message interfaces a descriptor
// belongs to.
type Interface string

const (
	InterfaceRecords   Interface = "Records"
	InterfaceProtocols Interface = "Protocols"
	InterfaceMessages  Interface = "Messages"
)

// Method names the operation within an interface.
type Method string

const (
	MethodRead      Method = "Read"
	MethodQuery     Method = "Query"
	MethodWrite     Method = "Write"
	MethodDelete    Method = "Delete"
	MethodSubscribe Method = "Subscribe"
	MethodConfigure Method = "Configure"
)

// Descriptor is the tagged header every message carries: every concrete
// descriptor type knows its own interface and method and serializes both
// as explicit fields alongside its own.
type Descriptor interface {
	Interface() Interface
	Method() Method
}

// Message is `{descriptor, fields}`: a nested descriptor and a flattened
// polymorphic body sharing the top-level JSON object.
type Message struct {
	Descriptor Descriptor
	Fields     Fields
}

type messageWire struct {
	Descriptor json.RawMessage `json:"descriptor"`
}

// descriptorHeader is peeked from the wire to dispatch to the concrete
// descriptor type before the full unmarshal.
type descriptorHeader struct {
	Interface Interface `json:"interface"`
	Method    Method    `json:"method"`
}

// MarshalJSON renders descriptor (with baked-in interface/method) nested
// under "descriptor", and the fields flattened at the top level beside it.
func (m Message) MarshalJSON() ([]byte, error) {
	descData, err := marshalDescriptor(m.Descriptor)
	if err != nil {
		return nil, fmt.Errorf("message: marshal descriptor: %w", err)
	}
	fieldsData, err := json.Marshal(m.Fields)
	if err != nil {
		return nil, fmt.Errorf("message: marshal fields: %w", err)
	}
	var fieldsMap map[string]json.RawMessage
	if err := json.Unmarshal(fieldsData, &fieldsMap); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(fieldsMap)+1)
	out := map[string]json.RawMessage{"descriptor": descData}
	keys = append(keys, "descriptor")
	for k, v := range fieldsMap {
		out[k] = v
		keys = append(keys, k)
	}
	return marshalOrderedObject(out, keys)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var wire messageWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var header descriptorHeader
	if err := json.Unmarshal(wire.Descriptor, &header); err != nil {
		return fmt.Errorf("message: peek descriptor header: %w", err)
	}
	desc, err := unmarshalDescriptor(header, wire.Descriptor)
	if err != nil {
		return err
	}
	m.Descriptor = desc
	var fields Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("message: unmarshal fields: %w", err)
	}
	m.Fields = fields
	return nil
}

// marshalDescriptor serializes d's own fields, then injects interface and
// method at the same level -- the Go equivalent of the source's derive
// macro that appends those two fields to every descriptor struct.
func marshalDescriptor(d Descriptor) (json.RawMessage, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	ifaceData, _ := json.Marshal(d.Interface())
	methodData, _ := json.Marshal(d.Method())
	keys := make([]string, 0, len(m)+2)
	out := map[string]json.RawMessage{
		"interface": ifaceData,
		"method":    methodData,
	}
	keys = append(keys, "interface", "method")
	for k, v := range m {
		out[k] = v
		keys = append(keys, k)
	}
	return marshalOrderedObject(out, keys)
}

func unmarshalDescriptor(header descriptorHeader, data json.RawMessage) (Descriptor, error) {
	switch header.Interface {
	case InterfaceRecords:
		return unmarshalRecordsDescriptor(header.Method, data)
	case InterfaceProtocols:
		return unmarshalProtocolsDescriptor(header.Method, data)
	case InterfaceMessages:
		return unmarshalMessagesDescriptor(header.Method, data)
	default:
		return nil, fmt.Errorf("message: unknown interface %q", header.Interface)
	}
}

func marshalOrderedObject(m map[string]json.RawMessage, keys []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

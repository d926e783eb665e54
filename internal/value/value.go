// Package value implements the typed dynamic value used throughout the store:
// index entries, tag entries, and filter operands are all a Value.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ipfs/go-cid"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindString
	KindInt
	KindFloat
	KindCid
	KindMap
	KindArray
	KindDateTime
)

// Value is a sum type over the value kinds a stored index, tag, or filter
// operand may take. The zero Value is KindNull.
type Value struct {
	kind Kind

	b     bool
	s     string
	i     int64
	f     float64
	c     cid.Cid
	m     map[string]Value
	a     []Value
	dt    time.Time
}

func Null() Value                       { return Value{kind: KindNull} }
func Bool(b bool) Value                 { return Value{kind: KindBool, b: b} }
func String(s string) Value             { return Value{kind: KindString, s: s} }
func Int(i int64) Value                 { return Value{kind: KindInt, i: i} }
func Float(f float64) Value             { return Value{kind: KindFloat, f: f} }
func CID(c cid.Cid) Value               { return Value{kind: KindCid, c: c} }
func Map(m map[string]Value) Value      { return Value{kind: KindMap, m: m} }
func Array(a []Value) Value             { return Value{kind: KindArray, a: a} }
func DateTime(t time.Time) Value        { return Value{kind: KindDateTime, dt: t.UTC()} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBool() (bool, bool)             { return v.b, v.kind == KindBool }
func (v Value) AsString() (string, bool)         { return v.s, v.kind == KindString }
func (v Value) AsInt() (int64, bool)             { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool)         { return v.f, v.kind == KindFloat }
func (v Value) AsCID() (cid.Cid, bool)           { return v.c, v.kind == KindCid }
func (v Value) AsMap() (map[string]Value, bool)  { return v.m, v.kind == KindMap }
func (v Value) AsArray() ([]Value, bool)         { return v.a, v.kind == KindArray }
func (v Value) AsDateTime() (time.Time, bool)    { return v.dt, v.kind == KindDateTime }
func (v Value) IsNull() bool                     { return v.kind == KindNull }

// dateTimeLayout matches RFC-3339 with microsecond precision and a trailing Z,
// per spec §6's wire-form requirement.
const dateTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatDateTime(t time.Time) string {
	return t.UTC().Format(dateTimeLayout)
}

// Equal reports whether two Values are the same variant and content.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		// a string that happens to parse as a datetime/cid compares equal
		// to its typed counterpart, since both round-trip to the same wire form.
		return compareString(a) == compareString(b)
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindCid:
		return a.c.Equals(b.c)
	case KindDateTime:
		return a.dt.Equal(b.dt)
	case KindArray:
		if len(a.a) != len(b.a) {
			return false
		}
		for i := range a.a {
			if !Equal(a.a[i], b.a[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.m) != len(b.m) {
			return false
		}
		for k, av := range a.m {
			bv, ok := b.m[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// compareString renders a scalar Value to the string it would serialize to,
// so that two differently-constructed Values carrying the same wire identity
// (e.g. String("2024-01-01T00:00:00Z") and DateTime(t)) compare as equal and
// order identically.
func compareString(v Value) string {
	switch v.kind {
	case KindString:
		return v.s
	case KindDateTime:
		return formatDateTime(v.dt)
	case KindCid:
		return v.c.String()
	default:
		data, _ := json.Marshal(v)
		return string(data)
	}
}

// Compare orders two Values for range filters and sort keys. Values of
// different incomparable kinds compare as 0 (callers should not mix kinds
// within a single indexed sort key).
func Compare(a, b Value) int {
	switch a.kind {
	case KindInt:
		if bi, ok := b.AsInt(); ok {
			switch {
			case a.i < bi:
				return -1
			case a.i > bi:
				return 1
			default:
				return 0
			}
		}
	case KindFloat:
		if bf, ok := b.AsFloat(); ok {
			switch {
			case a.f < bf:
				return -1
			case a.f > bf:
				return 1
			default:
				return 0
			}
		}
	case KindDateTime:
		if bt, ok := b.AsDateTime(); ok {
			switch {
			case a.dt.Before(bt):
				return -1
			case a.dt.After(bt):
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := compareString(a), compareString(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// MarshalJSON implements canonical JSON serialization: RFC-3339 strings
// round-trip as datetimes, CIDs serialize to multibase string form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindString:
		if t, err := time.Parse(time.RFC3339Nano, v.s); err == nil {
			return json.Marshal(formatDateTime(t))
		}
		return json.Marshal(v.s)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindCid:
		return json.Marshal(v.c.String())
	case KindDateTime:
		return json.Marshal(formatDateTime(v.dt))
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := v.m[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.a {
			if i > 0 {
				buf.WriteByte(',')
			}
			eb, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(eb)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("value: unknown kind %d", v.kind)
}

// UnmarshalJSON implements the dynamic decode: strings are tried as
// RFC-3339 datetimes, then as CIDs, then as boolean literals, before falling
// back to a plain string — matching the source visitor's precedence.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

func fromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case string:
		if dt, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return DateTime(dt)
		}
		if c, err := cid.Decode(t); err == nil {
			return CID(c)
		}
		return String(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		f, _ := t.Float64()
		return Float(f)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, v := range t {
			m[k] = fromAny(v)
		}
		return Map(m)
	case []any:
		a := make([]Value, len(t))
		for i, v := range t {
			a[i] = fromAny(v)
		}
		return Array(a)
	}
	return Null()
}

// String renders a human-readable form for logging/debugging, not the wire form.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid value: %v>", err)
	}
	return string(data)
}

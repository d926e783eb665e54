// Package filter implements the typed filter AST that the query compiler
// consumes: equality, range, one-of, and prefix filters over tagged keys,
// an outer disjunction of inner conjunctions, sort direction, and
// cursor-based pagination requests.
package filter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hookdeck/dwn-go/internal/value"
)

// Kind identifies which filter variant a Filter holds.
type Kind int

const (
	KindEqual Kind = iota
	KindRange
	KindOneOf
	KindPrefix
)

// BoundKind identifies whether a range endpoint is open.
type BoundKind int

const (
	Unbounded BoundKind = iota
	Included
	Excluded
)

// Bound is one endpoint of a Range filter.
type Bound struct {
	Kind  BoundKind
	Value value.Value
}

func IncludedBound(v value.Value) Bound { return Bound{Kind: Included, Value: v} }
func ExcludedBound(v value.Value) Bound { return Bound{Kind: Excluded, Value: v} }
func UnboundedBound() Bound             { return Bound{Kind: Unbounded} }

// Filter is one key's match condition within a conjunction.
type Filter struct {
	kind   Kind
	equal  value.Value
	lower  Bound
	upper  Bound
	oneOf  []value.Value
	prefix value.Value
}

func Equal(v value.Value) Filter { return Filter{kind: KindEqual, equal: v} }

// Range constructs a range filter. Both bounds unbounded is rejected by
// Validate, matching the compiler's "unbounded on both sides is an error"
// contract.
func Range(lower, upper Bound) Filter {
	return Filter{kind: KindRange, lower: lower, upper: upper}
}

func OneOf(vs []value.Value) Filter { return Filter{kind: KindOneOf, oneOf: vs} }
func Prefix(v value.Value) Filter   { return Filter{kind: KindPrefix, prefix: v} }

func (f Filter) Kind() Kind { return f.kind }

func (f Filter) EqualValue() value.Value    { return f.equal }
func (f Filter) Bounds() (Bound, Bound)      { return f.lower, f.upper }
func (f Filter) OneOfValues() []value.Value { return f.oneOf }
func (f Filter) PrefixValue() value.Value   { return f.prefix }

// Validate reports whether the filter is well-formed: a Range with both
// bounds unbounded carries no information and is rejected.
func (f Filter) Validate() error {
	if f.kind == KindRange && f.lower.Kind == Unbounded && f.upper.Kind == Unbounded {
		return fmt.Errorf("filter: range filter must have at least one bound")
	}
	return nil
}

// MarshalJSON renders the filter in its wire shape: a bare value for Equal,
// {gte,lte,gt,lt} for Range, a bare array for OneOf, {prefix:...} for Prefix.
func (f Filter) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case KindEqual:
		return json.Marshal(f.equal)
	case KindRange:
		m := map[string]value.Value{}
		switch f.lower.Kind {
		case Included:
			m["gte"] = f.lower.Value
		case Excluded:
			m["gt"] = f.lower.Value
		}
		switch f.upper.Kind {
		case Included:
			m["lte"] = f.upper.Value
		case Excluded:
			m["lt"] = f.upper.Value
		}
		return marshalSortedMap(m)
	case KindOneOf:
		return json.Marshal(f.oneOf)
	case KindPrefix:
		return marshalSortedMap(map[string]value.Value{"prefix": f.prefix})
	}
	return nil, fmt.Errorf("filter: unknown kind %d", f.kind)
}

func marshalSortedMap(m map[string]value.Value) ([]byte, error) {
	// deterministic key order keeps wire output diff-stable in tests
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// gte/gt before lte/lt, prefix alone: insertion order above already matches
	// intent, but guarantee determinism explicitly.
	order := []string{"gte", "gt", "lte", "lt", "prefix"}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, k := range order {
		v, ok := m[k]
		if !ok {
			continue
		}
		_ = keys
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses the filter visitor's precedence: string/number/bool
// literals become Equal, an array becomes OneOf, {prefix:...} becomes
// Prefix, and any other object becomes Range from its gte/gt/lte/lt keys.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case []any:
		vs := make([]value.Value, len(t))
		for i, item := range t {
			vb, err := json.Marshal(item)
			if err != nil {
				return err
			}
			var v value.Value
			if err := json.Unmarshal(vb, &v); err != nil {
				return err
			}
			vs[i] = v
		}
		*f = OneOf(vs)
		return nil
	case map[string]any:
		if pv, ok := t["prefix"]; ok {
			vb, err := json.Marshal(pv)
			if err != nil {
				return err
			}
			var v value.Value
			if err := json.Unmarshal(vb, &v); err != nil {
				return err
			}
			*f = Prefix(v)
			return nil
		}
		lower, upper := UnboundedBound(), UnboundedBound()
		decodeBound := func(key string, kind BoundKind) error {
			raw, ok := t[key]
			if !ok {
				return nil
			}
			vb, err := json.Marshal(raw)
			if err != nil {
				return err
			}
			var v value.Value
			if err := json.Unmarshal(vb, &v); err != nil {
				return err
			}
			if key == "gte" || key == "gt" {
				lower = Bound{Kind: kind, Value: v}
			} else {
				upper = Bound{Kind: kind, Value: v}
			}
			return nil
		}
		if err := decodeBound("gte", Included); err != nil {
			return err
		}
		if err := decodeBound("gt", Excluded); err != nil {
			return err
		}
		if err := decodeBound("lte", Included); err != nil {
			return err
		}
		if err := decodeBound("lt", Excluded); err != nil {
			return err
		}
		*f = Range(lower, upper)
		return nil
	default:
		vb, err := json.Marshal(t)
		if err != nil {
			return err
		}
		var v value.Value
		if err := json.Unmarshal(vb, &v); err != nil {
			return err
		}
		*f = Equal(v)
		return nil
	}
}

package rbtree

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// KeyKind identifies which JSON scalar variant a Key currently holds. A
// single tree only ever stores one kind at a time in practice (every value
// under a given indexed field is homogeneous), but the type itself doesn't
// enforce that — mixed-kind trees still produce a total order, just not a
// meaningful one.
type KeyKind uint8

const (
	KeyKindNull KeyKind = iota
	KeyKindBool
	KeyKindFloat64
	KeyKindString
)

// Key is a small tagged union over the JSON scalar types that can appear as
// a field value in an indexed document: string, float64, bool, and null.
// FieldIndex keys are arbitrary JSON scalars pulled straight off a decoded
// record, so the tree needs a key type that can hold any of them and still
// compare consistently.
type Key struct {
	kind KeyKind
	str  string
	num  float64
	flag bool
}

// NullKey returns the Key representing JSON null.
func NullKey() Key { return Key{kind: KeyKindNull} }

// StringKey wraps a string value as a Key.
func StringKey(s string) Key { return Key{kind: KeyKindString, str: s} }

// FloatKey wraps a float64 value as a Key.
func FloatKey(f float64) Key { return Key{kind: KeyKindFloat64, num: f} }

// BoolKey wraps a bool value as a Key.
func BoolKey(b bool) Key { return Key{kind: KeyKindBool, flag: b} }

// KeyFromAny converts a decoded JSON scalar (string, float64, bool, or nil)
// into a Key. Every integer kind normalizes to a FloatKey rather than a
// StringKey: a record field indexed at insert time may carry a Go int or
// int64 straight from the caller, but once that record round-trips through
// the log's JSON encoding — as it does on every vacuum rebuild — the same
// value decodes back as a float64. Indexing int and float64 under the same
// kind keeps a field's lookups stable across a vacuum instead of silently
// splitting into two incompatible trees. Any other type collapses to its
// fmt.Sprint string form rather than panicking, since the only caller is
// field indexing over already validated records and a defensive fallback is
// cheaper than a new error path that should never trigger.
func KeyFromAny(v any) Key {
	switch t := v.(type) {
	case nil:
		return NullKey()
	case string:
		return StringKey(t)
	case bool:
		return BoolKey(t)
	case float64:
		return FloatKey(t)
	case float32:
		return FloatKey(float64(t))
	case int:
		return FloatKey(float64(t))
	case int8:
		return FloatKey(float64(t))
	case int16:
		return FloatKey(float64(t))
	case int32:
		return FloatKey(float64(t))
	case int64:
		return FloatKey(float64(t))
	case uint:
		return FloatKey(float64(t))
	case uint8:
		return FloatKey(float64(t))
	case uint16:
		return FloatKey(float64(t))
	case uint32:
		return FloatKey(float64(t))
	case uint64:
		return FloatKey(float64(t))
	default:
		return StringKey(fmt.Sprint(t))
	}
}

// String reports the wire name of a KeyKind, used both for debugging and as
// the discriminator tag in Key's JSON encoding.
func (kk KeyKind) String() string {
	switch kk {
	case KeyKindBool:
		return "bool"
	case KeyKindFloat64:
		return "float64"
	case KeyKindString:
		return "string"
	default:
		return "null"
	}
}

// Kind reports which scalar variant the Key holds.
func (k Key) Kind() KeyKind { return k.kind }

// Value returns the key's underlying Go value as an any, suitable for
// round-tripping back through encoding/json.
func (k Key) Value() any {
	switch k.kind {
	case KeyKindString:
		return k.str
	case KeyKindFloat64:
		return k.num
	case KeyKindBool:
		return k.flag
	default:
		return nil
	}
}

// Compare defines a total order over Key values within a single tree.
// Keys are compared by type tag first — this ordering is stable and
// arbitrary across types, never a documented behavior, since FieldIndex
// callers guarantee every value indexed under one field shares a type.
// Within a shared kind, strings compare lexically, floats numerically,
// bools false-before-true, and two nulls compare equal.
func (k Key) Compare(other Key) int {
	if k.kind != other.kind {
		if k.kind < other.kind {
			return -1
		}
		return 1
	}

	switch k.kind {
	case KeyKindString:
		switch {
		case k.str < other.str:
			return -1
		case k.str > other.str:
			return 1
		default:
			return 0
		}
	case KeyKindFloat64:
		switch {
		case k.num < other.num:
			return -1
		case k.num > other.num:
			return 1
		default:
			return 0
		}
	case KeyKindBool:
		if k.flag == other.flag {
			return 0
		}
		if !k.flag {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// keyWire is the JSON-visible shape of a Key: an explicit kind tag plus the
// scalar value, so a round-trip through Load never has to guess which
// variant an ambiguous JSON value (e.g. a bare `null`) belongs to.
type keyWire struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}

// MarshalJSON encodes the Key as a tagged {kind, value} object.
func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(keyWire{Kind: k.kind.String(), Value: k.Value()})
}

// UnmarshalJSON decodes a tagged {kind, value} object back into a Key. An
// unrecognized kind tag is reported rather than silently coerced, since a
// miscoded index file should surface as corruption, not a wrong lookup.
func (k *Key) UnmarshalJSON(data []byte) error {
	var w keyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch w.Kind {
	case "null":
		*k = NullKey()
	case "string":
		s, _ := w.Value.(string)
		*k = StringKey(s)
	case "float64":
		f, _ := w.Value.(float64)
		*k = FloatKey(f)
	case "bool":
		b, _ := w.Value.(bool)
		*k = BoolKey(b)
	default:
		return fmt.Errorf("rbtree: invalid key kind %q", w.Kind)
	}
	return nil
}

// String renders the Key for logging and error details.
func (k Key) String() string {
	switch k.kind {
	case KeyKindString:
		return k.str
	case KeyKindFloat64:
		return fmt.Sprintf("%v", k.num)
	case KeyKindBool:
		return fmt.Sprintf("%v", k.flag)
	default:
		return "null"
	}
}

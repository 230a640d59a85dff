package lang

import (
	"encoding/base64"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindNull is the absence of a value.
	KindNull Kind = iota

	// KindBool is a boolean.
	KindBool

	// KindNumber is a double-precision float. Every numeric literal in the
	// text grammar produces a Number.
	KindNumber

	// KindString is UTF-8 text.
	KindString

	// KindBytes is a raw byte sequence. The text grammar never produces
	// Bytes; they originate from binary decode or programmatic construction.
	KindBytes

	// KindArray is an ordered sequence of values.
	KindArray

	// KindObject is a string-keyed mapping. Insertion order is not
	// semantically significant.
	KindObject

	// KindTimestamp is a point in time.
	KindTimestamp

	// KindDuration is a span of time.
	KindDuration

	// KindReference is an opaque numeric id resolved by the consumer.
	KindReference
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindTimestamp:
		return "timestamp"
	case KindDuration:
		return "duration"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Value is the tagged union shared by the parser and the binary codec.
// The zero value is Null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	raw  []byte
	t    time.Time
	d    time.Duration
	ref  uint64
	arr  []Value
	obj  map[string]Value
}

// NewNull returns the null value.
func NewNull() Value { return Value{kind: KindNull} }

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewNumber returns a numeric value.
func NewNumber(n float64) Value { return Value{kind: KindNumber, n: n} }

// NewString returns a string value.
func NewString(s string) Value { return Value{kind: KindString, s: s} }

// NewBytes returns a raw bytes value.
func NewBytes(b []byte) Value { return Value{kind: KindBytes, raw: b} }

// NewArray returns an array value holding the given elements.
func NewArray(elems ...Value) Value { return Value{kind: KindArray, arr: elems} }

// NewObject returns an object value backed by the given map.
// A nil map yields an empty object.
func NewObject(fields map[string]Value) Value {
	if fields == nil {
		fields = make(map[string]Value)
	}

	return Value{kind: KindObject, obj: fields}
}

// NewTimestamp returns a timestamp value.
func NewTimestamp(t time.Time) Value { return Value{kind: KindTimestamp, t: t} }

// NewDuration returns a duration value.
func NewDuration(d time.Duration) Value { return Value{kind: KindDuration, d: d} }

// NewReference returns a reference value.
func NewReference(id uint64) Value { return Value{kind: KindReference, ref: id} }

// Kind reports the variant held by the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsBool reports whether the value is a boolean.
func (v Value) IsBool() bool { return v.kind == KindBool }

// IsNumber reports whether the value is a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsString reports whether the value is a string.
func (v Value) IsString() bool { return v.kind == KindString }

// IsArray reports whether the value is an array.
func (v Value) IsArray() bool { return v.kind == KindArray }

// IsObject reports whether the value is an object.
func (v Value) IsObject() bool { return v.kind == KindObject }

// AsBool unwraps a boolean value.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}

	return v.b, true
}

// AsNumber unwraps a numeric value.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}

	return v.n, true
}

// AsString unwraps a string value.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}

	return v.s, true
}

// AsBytes unwraps a raw bytes value.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}

	return v.raw, true
}

// AsArray unwraps an array value.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}

	return v.arr, true
}

// AsObject unwraps an object value.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}

	return v.obj, true
}

// AsTimestamp unwraps a timestamp value.
func (v Value) AsTimestamp() (time.Time, bool) {
	if v.kind != KindTimestamp {
		return time.Time{}, false
	}

	return v.t, true
}

// AsDuration unwraps a duration value.
func (v Value) AsDuration() (time.Duration, bool) {
	if v.kind != KindDuration {
		return 0, false
	}

	return v.d, true
}

// AsReference unwraps a reference value.
func (v Value) AsReference() (uint64, bool) {
	if v.kind != KindReference {
		return 0, false
	}

	return v.ref, true
}

// Index returns the element at position i of an array value.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}

	return v.arr[i], true
}

// Get looks up a key in an object value. The key may be a dotted path
// ("server.port"), in which case each segment descends one object level.
func (v Value) Get(key string) (Value, bool) {
	cur := v

	for seg := range strings.SplitSeq(key, ".") {
		if cur.kind != KindObject {
			return Value{}, false
		}

		next, ok := cur.obj[seg]
		if !ok {
			return Value{}, false
		}

		cur = next
	}

	return cur, true
}

// Equal reports structural equality. It is total across all variants.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindBytes:
		return string(v.raw) == string(other.raw)
	case KindTimestamp:
		return v.t.Equal(other.t)
	case KindDuration:
		return v.d == other.d
	case KindReference:
		return v.ref == other.ref
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}

		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}

		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}

		for k, val := range v.obj {
			o, ok := other.obj[k]
			if !ok || !val.Equal(o) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// String renders the canonical textual form of the value. It is used for
// diagnostics and for string-concatenation evaluation. Object keys are
// sorted so the rendering is deterministic.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindString:
		return v.s
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.raw)
	case KindTimestamp:
		return v.t.UTC().Format(time.RFC3339)
	case KindDuration:
		return v.d.String()
	case KindReference:
		return "ref(" + strconv.FormatUint(v.ref, 10) + ")"
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.obj[k].String()
		}

		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}

// Truthy reports whether the value is true under conditional evaluation:
// booleans use their value; strings are true unless empty, "false", "null",
// or "0"; numbers are true unless exactly zero; null is false; everything
// else is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0
	case KindString:
		return v.s != "" && v.s != "false" && v.s != "null" && v.s != "0"
	default:
		return true
	}
}

package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/tsklang/tsk/lang"
)

func TestEncodeNumber_WidthSelection(t *testing.T) {
	tests := []struct {
		name string
		n    float64
		tag  byte
	}{
		{name: "zero", n: 0, tag: tagInt8},
		{name: "int8 max", n: 127, tag: tagInt8},
		{name: "int8 min", n: -128, tag: tagInt8},
		{name: "int16", n: 128, tag: tagInt16},
		{name: "int16 negative", n: -30000, tag: tagInt16},
		{name: "int32", n: 70000, tag: tagInt32},
		{name: "int64", n: 1 << 40, tag: tagInt64},
		{name: "fractional", n: 1.5, tag: tagFloat64},
		{name: "beyond exact range", n: 1 << 60, tag: tagFloat64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := encodeNumber(nil, tt.n)
			if buf[0] != tt.tag {
				t.Errorf("tag = %#02x, want %#02x", buf[0], tt.tag)
			}

			v, n, err := DecodeValue(buf)
			if err != nil {
				t.Fatalf("decode error: %v", err)
			}

			if n != len(buf) {
				t.Errorf("consumed %d of %d bytes", n, len(buf))
			}

			if got, _ := v.AsNumber(); got != tt.n {
				t.Errorf("round trip = %v, want %v", got, tt.n)
			}
		})
	}
}

func TestValueRoundTrip_AllKinds(t *testing.T) {
	ts := time.Date(2024, time.December, 31, 23, 59, 59, 123456789, time.UTC)

	tests := []struct {
		name string
		v    lang.Value
	}{
		{name: "null", v: lang.NewNull()},
		{name: "bool", v: lang.NewBool(true)},
		{name: "string", v: lang.NewString("hello, 世界")},
		{name: "empty string", v: lang.NewString("")},
		{name: "bytes", v: lang.NewBytes([]byte{0, 1, 2, 0xFF})},
		{name: "timestamp", v: lang.NewTimestamp(ts)},
		{name: "duration", v: lang.NewDuration(90 * time.Minute)},
		{name: "reference", v: lang.NewReference(1 << 40)},
		{name: "empty array", v: lang.NewArray()},
		{
			name: "nested",
			v: lang.NewObject(map[string]lang.Value{
				"list": lang.NewArray(
					lang.NewNumber(1),
					lang.NewObject(map[string]lang.Value{
						"deep": lang.NewString("yes"),
					}),
				),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := EncodeValue(nil, tt.v)
			if err != nil {
				t.Fatalf("encode error: %v", err)
			}

			got, n, err := DecodeValue(buf)
			if err != nil {
				t.Fatalf("decode error: %v", err)
			}

			if n != len(buf) {
				t.Errorf("consumed %d of %d bytes", n, len(buf))
			}

			if !got.Equal(tt.v) {
				t.Errorf("round trip = %v, want %v", got, tt.v)
			}
		})
	}
}

func TestEncodeValue_DeterministicObjectOrder(t *testing.T) {
	v := lang.NewObject(map[string]lang.Value{
		"c": lang.NewNumber(3),
		"a": lang.NewNumber(1),
		"b": lang.NewNumber(2),
	})

	first, err := EncodeValue(nil, v)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	for range 10 {
		again, err := EncodeValue(nil, v)
		if err != nil {
			t.Fatalf("encode error: %v", err)
		}

		if string(again) != string(first) {
			t.Fatal("encoding is not deterministic")
		}
	}
}

func TestDecodeValue_HostileCounts(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{
			// Array claiming 2^32 elements in a 3-byte buffer.
			name: "huge array count",
			buf:  append([]byte{tagArray}, appendUvarint(nil, 1<<32)...),
		},
		{
			name: "huge object count",
			buf:  append([]byte{tagObject}, appendUvarint(nil, 1<<40)...),
		},
		{
			name: "string length past end",
			buf:  append([]byte{tagString}, appendUvarint(nil, 1000)...),
		},
		{
			name: "empty input",
			buf:  nil,
		},
		{
			name: "bare tag",
			buf:  []byte{tagInt64},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeValue(tt.buf)
			if !errors.Is(err, ErrTruncatedData) {
				t.Errorf("error = %v, want %v", err, ErrTruncatedData)
			}
		})
	}
}

func TestDecodeValue_UnknownTags(t *testing.T) {
	for _, tag := range []byte{tagDecimal, 0x14, 0x7F, 0xFF} {
		if _, _, err := DecodeValue([]byte{tag}); !errors.Is(err, ErrUnsupportedTag) {
			t.Errorf("tag %#02x: error = %v, want %v", tag, err, ErrUnsupportedTag)
		}
	}
}

func TestDecodeValue_NestingLimit(t *testing.T) {
	// Arrays nested one past the limit: each level is tag + count 1.
	buf := make([]byte, 0, 2*(maxNesting+2)+1)
	for range maxNesting + 2 {
		buf = append(buf, tagArray, 1)
	}

	buf = append(buf, tagNull)

	if _, _, err := DecodeValue(buf); !errors.Is(err, ErrNestingTooDeep) {
		t.Errorf("error = %v, want %v", err, ErrNestingTooDeep)
	}
}

func TestEncodeValue_NestingLimit(t *testing.T) {
	v := lang.NewNull()
	for range maxNesting + 2 {
		v = lang.NewArray(v)
	}

	if _, err := EncodeValue(nil, v); !errors.Is(err, ErrNestingTooDeep) {
		t.Errorf("error = %v, want %v", err, ErrNestingTooDeep)
	}
}

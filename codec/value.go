package codec

import (
	"encoding/binary"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/tsklang/tsk/lang"
)

// Value tags. Integer widths exist so integral numbers spend the fewest
// bytes the value fits in; decoding widens every numeric tag back to a
// number.
const (
	tagNull      byte = 0x00
	tagBool      byte = 0x01
	tagInt8      byte = 0x02
	tagInt16     byte = 0x03
	tagInt32     byte = 0x04
	tagInt64     byte = 0x05
	tagUint8     byte = 0x06
	tagUint16    byte = 0x07
	tagUint32    byte = 0x08
	tagUint64    byte = 0x09
	tagFloat32   byte = 0x0A
	tagFloat64   byte = 0x0B
	tagString    byte = 0x0C
	tagBytes     byte = 0x0D
	tagArray     byte = 0x0E
	tagObject    byte = 0x0F
	tagTimestamp byte = 0x10
	tagDuration  byte = 0x11
	tagReference byte = 0x12
	tagDecimal   byte = 0x13
)

// maxNesting bounds recursive value depth on both encode and decode, so a
// crafted container cannot exhaust the stack.
const maxNesting = 64

// safeInteger is the largest magnitude at which float64 still represents
// every integer exactly.
const safeInteger = 1 << 53

// EncodeValue appends the binary encoding of v to buf.
func EncodeValue(buf []byte, v lang.Value) ([]byte, error) {
	return encodeValue(buf, v, 0)
}

func encodeValue(buf []byte, v lang.Value, depth int) ([]byte, error) {
	if depth > maxNesting {
		return nil, ErrNestingTooDeep.With(slog.Int("depth", depth))
	}

	switch v.Kind() {
	case lang.KindNull:
		return append(buf, tagNull), nil

	case lang.KindBool:
		b, _ := v.AsBool()
		if b {
			return append(buf, tagBool, 1), nil
		}

		return append(buf, tagBool, 0), nil

	case lang.KindNumber:
		n, _ := v.AsNumber()

		return encodeNumber(buf, n), nil

	case lang.KindString:
		s, _ := v.AsString()

		buf = append(buf, tagString)
		buf = appendUvarint(buf, uint64(len(s)))

		return append(buf, s...), nil

	case lang.KindBytes:
		b, _ := v.AsBytes()

		buf = append(buf, tagBytes)
		buf = appendUvarint(buf, uint64(len(b)))

		return append(buf, b...), nil

	case lang.KindArray:
		arr, _ := v.AsArray()

		buf = append(buf, tagArray)
		buf = appendUvarint(buf, uint64(len(arr)))

		var err error
		for _, item := range arr {
			buf, err = encodeValue(buf, item, depth+1)
			if err != nil {
				return nil, err
			}
		}

		return buf, nil

	case lang.KindObject:
		obj, _ := v.AsObject()

		// Keys sort so the same value always encodes to the same bytes.
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		buf = append(buf, tagObject)
		buf = appendUvarint(buf, uint64(len(keys)))

		var err error
		for _, k := range keys {
			buf = appendUvarint(buf, uint64(len(k)))
			buf = append(buf, k...)

			buf, err = encodeValue(buf, obj[k], depth+1)
			if err != nil {
				return nil, err
			}
		}

		return buf, nil

	case lang.KindTimestamp:
		t, _ := v.AsTimestamp()

		buf = append(buf, tagTimestamp)

		return binary.LittleEndian.AppendUint64(buf, uint64(t.UnixNano())), nil

	case lang.KindDuration:
		d, _ := v.AsDuration()

		buf = append(buf, tagDuration)

		return binary.LittleEndian.AppendUint64(buf, uint64(d)), nil

	case lang.KindReference:
		id, _ := v.AsReference()

		buf = append(buf, tagReference)

		return appendUvarint(buf, id), nil

	default:
		return nil, ErrEncode.
			With(slog.Int("kind", int(v.Kind())))
	}
}

// encodeNumber picks the narrowest integer tag for integral values inside
// the float64-exact range, and Float64 otherwise.
func encodeNumber(buf []byte, n float64) []byte {
	if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) <= safeInteger {
		i := int64(n)

		switch {
		case i >= math.MinInt8 && i <= math.MaxInt8:
			return append(buf, tagInt8, byte(int8(i)))
		case i >= math.MinInt16 && i <= math.MaxInt16:
			buf = append(buf, tagInt16)

			return binary.LittleEndian.AppendUint16(buf, uint16(int16(i)))
		case i >= math.MinInt32 && i <= math.MaxInt32:
			buf = append(buf, tagInt32)

			return binary.LittleEndian.AppendUint32(buf, uint32(int32(i)))
		default:
			buf = append(buf, tagInt64)

			return binary.LittleEndian.AppendUint64(buf, uint64(i))
		}
	}

	buf = append(buf, tagFloat64)

	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(n))
}

// DecodeValue decodes one value from the front of buf, returning the
// value and the number of bytes consumed.
func DecodeValue(buf []byte) (lang.Value, int, error) {
	return decodeValue(buf, 0)
}

func decodeValue(buf []byte, depth int) (lang.Value, int, error) {
	if depth > maxNesting {
		return lang.Value{}, 0, ErrNestingTooDeep.With(slog.Int("depth", depth))
	}

	if len(buf) == 0 {
		return lang.Value{}, 0, ErrTruncatedData.
			With(slog.String("reason", "missing value tag"))
	}

	tag, rest := buf[0], buf[1:]

	switch tag {
	case tagNull:
		return lang.NewNull(), 1, nil

	case tagBool:
		if len(rest) < 1 {
			return lang.Value{}, 0, truncated(tag)
		}

		return lang.NewBool(rest[0] != 0), 2, nil

	case tagInt8:
		if len(rest) < 1 {
			return lang.Value{}, 0, truncated(tag)
		}

		return lang.NewNumber(float64(int8(rest[0]))), 2, nil

	case tagInt16:
		if len(rest) < 2 {
			return lang.Value{}, 0, truncated(tag)
		}

		n := int16(binary.LittleEndian.Uint16(rest))

		return lang.NewNumber(float64(n)), 3, nil

	case tagInt32:
		if len(rest) < 4 {
			return lang.Value{}, 0, truncated(tag)
		}

		n := int32(binary.LittleEndian.Uint32(rest))

		return lang.NewNumber(float64(n)), 5, nil

	case tagInt64:
		if len(rest) < 8 {
			return lang.Value{}, 0, truncated(tag)
		}

		n := int64(binary.LittleEndian.Uint64(rest))

		return lang.NewNumber(float64(n)), 9, nil

	case tagUint8:
		if len(rest) < 1 {
			return lang.Value{}, 0, truncated(tag)
		}

		return lang.NewNumber(float64(rest[0])), 2, nil

	case tagUint16:
		if len(rest) < 2 {
			return lang.Value{}, 0, truncated(tag)
		}

		return lang.NewNumber(float64(binary.LittleEndian.Uint16(rest))), 3, nil

	case tagUint32:
		if len(rest) < 4 {
			return lang.Value{}, 0, truncated(tag)
		}

		return lang.NewNumber(float64(binary.LittleEndian.Uint32(rest))), 5, nil

	case tagUint64:
		if len(rest) < 8 {
			return lang.Value{}, 0, truncated(tag)
		}

		return lang.NewNumber(float64(binary.LittleEndian.Uint64(rest))), 9, nil

	case tagFloat32:
		if len(rest) < 4 {
			return lang.Value{}, 0, truncated(tag)
		}

		n := math.Float32frombits(binary.LittleEndian.Uint32(rest))

		return lang.NewNumber(float64(n)), 5, nil

	case tagFloat64:
		if len(rest) < 8 {
			return lang.Value{}, 0, truncated(tag)
		}

		n := math.Float64frombits(binary.LittleEndian.Uint64(rest))

		return lang.NewNumber(n), 9, nil

	case tagString:
		s, n, err := decodeBlob(rest)
		if err != nil {
			return lang.Value{}, 0, err
		}

		return lang.NewString(string(s)), 1 + n, nil

	case tagBytes:
		b, n, err := decodeBlob(rest)
		if err != nil {
			return lang.Value{}, 0, err
		}

		out := make([]byte, len(b))
		copy(out, b)

		return lang.NewBytes(out), 1 + n, nil

	case tagArray:
		count, n, err := readUvarint(rest)
		if err != nil {
			return lang.Value{}, 0, err
		}

		rest = rest[n:]

		// Every element costs at least a tag byte, so a count beyond the
		// remaining length is corrupt; reject before allocating.
		if count > uint64(len(rest)) {
			return lang.Value{}, 0, ErrTruncatedData.
				With(slog.Uint64("count", count), slog.Int("remaining", len(rest)))
		}

		items := make([]lang.Value, 0, count)
		used := 1 + n

		for range count {
			item, sz, err := decodeValue(rest, depth+1)
			if err != nil {
				return lang.Value{}, 0, err
			}

			items = append(items, item)
			rest = rest[sz:]
			used += sz
		}

		return lang.NewArray(items...), used, nil

	case tagObject:
		count, n, err := readUvarint(rest)
		if err != nil {
			return lang.Value{}, 0, err
		}

		rest = rest[n:]

		if count > uint64(len(rest)) {
			return lang.Value{}, 0, ErrTruncatedData.
				With(slog.Uint64("count", count), slog.Int("remaining", len(rest)))
		}

		obj := make(map[string]lang.Value, count)
		used := 1 + n

		for range count {
			key, kn, err := decodeBlob(rest)
			if err != nil {
				return lang.Value{}, 0, err
			}

			rest = rest[kn:]
			used += kn

			item, sz, err := decodeValue(rest, depth+1)
			if err != nil {
				return lang.Value{}, 0, err
			}

			obj[string(key)] = item
			rest = rest[sz:]
			used += sz
		}

		return lang.NewObject(obj), used, nil

	case tagTimestamp:
		if len(rest) < 8 {
			return lang.Value{}, 0, truncated(tag)
		}

		ns := int64(binary.LittleEndian.Uint64(rest))

		return lang.NewTimestamp(time.Unix(0, ns).UTC()), 9, nil

	case tagDuration:
		if len(rest) < 8 {
			return lang.Value{}, 0, truncated(tag)
		}

		d := time.Duration(binary.LittleEndian.Uint64(rest))

		return lang.NewDuration(d), 9, nil

	case tagReference:
		id, n, err := readUvarint(rest)
		if err != nil {
			return lang.Value{}, 0, err
		}

		return lang.NewReference(id), 1 + n, nil

	case tagDecimal:
		// Reserved for arbitrary-precision decimals; no encoder emits it
		// yet, and decoding rejects it rather than guessing a layout.
		return lang.Value{}, 0, ErrUnsupportedTag.
			With(slog.Int("tag", int(tag)))

	default:
		return lang.Value{}, 0, ErrUnsupportedTag.
			With(slog.Int("tag", int(tag)))
	}
}

// decodeBlob reads a uvarint length prefix and that many bytes. The
// returned slice aliases buf.
func decodeBlob(buf []byte) ([]byte, int, error) {
	size, n, err := readUvarint(buf)
	if err != nil {
		return nil, 0, err
	}

	if size > uint64(len(buf)-n) {
		return nil, 0, ErrTruncatedData.
			With(slog.Uint64("size", size), slog.Int("remaining", len(buf)-n))
	}

	return buf[n : n+int(size)], n + int(size), nil
}

func truncated(tag byte) error {
	return ErrTruncatedData.With(slog.Int("tag", int(tag)))
}

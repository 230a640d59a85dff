package codec

import "errors"

// Unsigned varints use 7-bit little-endian groups with a continuation
// bit, the same scheme as encoding/binary but with strict bounds errors
// instead of sentinel return codes.

const maxVarintLen = 10

// appendUvarint appends the varint encoding of u to buf.
func appendUvarint(buf []byte, u uint64) []byte {
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}

	return append(buf, byte(u))
}

// readUvarint decodes a varint from the front of buf, returning the value
// and the number of bytes consumed.
func readUvarint(buf []byte) (uint64, int, error) {
	var u uint64

	for i := 0; i < len(buf) && i < maxVarintLen; i++ {
		b := buf[i]

		if i == maxVarintLen-1 && b > 1 {
			// The tenth byte may only contribute the top bit of a uint64.
			return 0, 0, ErrTruncatedData.Wrap(errVarintOverflow)
		}

		u |= uint64(b&0x7f) << (7 * i)

		if b < 0x80 {
			return u, i + 1, nil
		}
	}

	return 0, 0, ErrTruncatedData.Wrap(errVarintUnterminated)
}

var (
	errVarintOverflow     = errors.New("varint overflows uint64")
	errVarintUnterminated = errors.New("varint missing terminator")
)

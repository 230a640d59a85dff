package codec

import (
	"math"
	"testing"

	"github.com/tsklang/tsk/lang"
)

func FuzzReadUvarint(f *testing.F) {
	f.Add([]byte{0x00})
	f.Add([]byte{0x7F})
	f.Add([]byte{0x80, 0x01})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})
	f.Add([]byte{0x80})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		u, n, err := readUvarint(data)
		if err != nil {
			return
		}

		if n <= 0 || n > len(data) || n > maxVarintLen {
			t.Fatalf("consumed %d bytes of %d", n, len(data))
		}

		// Re-encoding the decoded value must reproduce the canonical form,
		// which then decodes to the same value.
		enc := appendUvarint(nil, u)

		v, m, err := readUvarint(enc)
		if err != nil {
			t.Fatalf("re-decode failed: %v", err)
		}

		if v != u || m != len(enc) {
			t.Fatalf("re-decode = %d (%d bytes), want %d (%d bytes)",
				v, m, u, len(enc))
		}
	})
}

func TestUvarint_Bounds(t *testing.T) {
	tests := []struct {
		name string
		u    uint64
	}{
		{name: "zero", u: 0},
		{name: "single byte max", u: 127},
		{name: "two bytes", u: 128},
		{name: "max uint64", u: math.MaxUint64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := appendUvarint(nil, tt.u)

			got, n, err := readUvarint(enc)
			if err != nil {
				t.Fatalf("decode error: %v", err)
			}

			if got != tt.u || n != len(enc) {
				t.Errorf("decode = %d (%d bytes), want %d (%d bytes)",
					got, n, tt.u, len(enc))
			}
		})
	}
}

func TestReadUvarint_Overflow(t *testing.T) {
	// Eleven continuation bytes can never terminate within uint64.
	over := []byte{
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01,
	}

	if _, _, err := readUvarint(over); err == nil {
		t.Error("overflowing varint decoded without error")
	}
}

// FuzzDecode drives the container decoder with arbitrary bytes; any input
// must produce a clean error or a valid config, never a panic.
func FuzzDecode(f *testing.F) {
	seed := func(opts ...Option) []byte {
		cfg := lang.NewConfig()
		cfg.Set("k", lang.NewString("v"))
		cfg.Set("n", lang.NewNumber(42))
		cfg.Set("sec.inner", lang.NewBool(true))

		bin, err := Encode(cfg, opts...)
		if err != nil {
			return nil
		}

		return bin
	}

	f.Add(seed())
	f.Add(seed(WithCompression(CompressGzip)))
	f.Add(seed(WithCompression(CompressZstd)))
	f.Add([]byte{})
	f.Add(magic[:])

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("decoder panicked: %v", r)
			}
		}()

		cfg, err := Decode(data)
		if err == nil && cfg == nil {
			t.Error("nil config without error")
		}
	})
}

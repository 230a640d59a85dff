package codec

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/tsklang/tsk/lang"
)

func testConfig(t *testing.T) *lang.Config {
	t.Helper()

	input := `
name: "compiled"
pi: 3.14159
count: 70000
negative: -5
enabled: true
empty: null
tags: ["a", "b", "c"]

[server]
host: "0.0.0.0"
port: 8080
limits: {max: 100, burst: 250}
`

	cfg, err := lang.Parse(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return cfg
}

func testKey(t *testing.T) []byte {
	t.Helper()

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}

	return key
}

func TestRoundTrip(t *testing.T) {
	key := testKey(t)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}

	tests := []struct {
		name   string
		encode []Option
		decode []Option
	}{
		{
			name: "plain",
		},
		{
			name:   "gzip",
			encode: []Option{WithCompression(CompressGzip)},
		},
		{
			name:   "zstd",
			encode: []Option{WithCompression(CompressZstd)},
		},
		{
			name:   "encrypted",
			encode: []Option{WithKey(key)},
			decode: []Option{WithKey(key)},
		},
		{
			name:   "signed",
			encode: []Option{WithSigningKey(priv)},
			decode: []Option{WithVerifyKey(pub)},
		},
		{
			name: "everything",
			encode: []Option{
				WithCompression(CompressZstd),
				WithKey(key),
				WithSigningKey(priv),
			},
			decode: []Option{WithKey(key), WithVerifyKey(pub)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)

			bin, err := Encode(cfg, tt.encode...)
			if err != nil {
				t.Fatalf("encode error: %v", err)
			}

			got, err := Decode(bin, tt.decode...)
			if err != nil {
				t.Fatalf("decode error: %v", err)
			}

			if !cfg.Equal(got) {
				t.Errorf("round trip changed config:\nin:  %v\nout: %v",
					cfg.ToMap(), got.ToMap())
			}
		})
	}
}

func TestDecode_BadMagic(t *testing.T) {
	bin, err := Encode(testConfig(t))
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	bin[0] ^= 0xFF

	if _, err := Decode(bin); !errors.Is(err, ErrHeaderInvalid) {
		t.Errorf("error = %v, want %v", err, ErrHeaderInvalid)
	}
}

func TestDecode_HeaderBitFlips(t *testing.T) {
	bin, err := Encode(testConfig(t))
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	// Any single-bit corruption of the checksummed header region must be
	// detected as either a bad magic, version, or checksum; never a panic
	// or a silent success.
	for off := range 32 {
		for bit := range 8 {
			corrupted := make([]byte, len(bin))
			copy(corrupted, bin)
			corrupted[off] ^= 1 << bit

			_, err := Decode(corrupted)
			if err == nil {
				t.Fatalf("corruption at byte %d bit %d decoded without error",
					off, bit)
			}

			if !errors.Is(err, ErrHeaderInvalid) &&
				!errors.Is(err, ErrUnsupportedVersion) &&
				!errors.Is(err, ErrChecksumMismatch) &&
				!errors.Is(err, ErrTruncatedData) {
				t.Fatalf("corruption at byte %d bit %d: unexpected error %v",
					off, bit, err)
			}
		}
	}
}

func TestDecode_Truncated(t *testing.T) {
	bin, err := Encode(testConfig(t))
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: ErrHeaderInvalid},
		{name: "partial header", data: bin[:headerSize-1], want: ErrHeaderInvalid},
		{name: "header only", data: bin[:headerSize], want: ErrTruncatedData},
		{name: "partial payload", data: bin[:len(bin)-1], want: ErrTruncatedData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_WrongKey(t *testing.T) {
	bin, err := Encode(testConfig(t), WithKey(testKey(t)))
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	if _, err := Decode(bin); !errors.Is(err, ErrKeyRequired) {
		t.Errorf("keyless decode error = %v, want %v", err, ErrKeyRequired)
	}

	if _, err := Decode(bin, WithKey(testKey(t))); !errors.Is(err, ErrDecryption) {
		t.Errorf("wrong key decode error = %v, want %v", err, ErrDecryption)
	}
}

func TestDecode_TamperedSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}

	bin, err := Encode(testConfig(t), WithSigningKey(priv))
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	// Flip one payload byte. The header checksum does not cover the
	// payload, so only the signature can catch this.
	bin[headerSize] ^= 0x01

	if _, err := Decode(bin, WithVerifyKey(pub)); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("error = %v, want %v", err, ErrSignatureInvalid)
	}
}

func TestEncode_BadKeySize(t *testing.T) {
	_, err := Encode(testConfig(t), WithKey([]byte("short")))
	if !errors.Is(err, ErrKeySize) {
		t.Errorf("error = %v, want %v", err, ErrKeySize)
	}
}

func TestInspect(t *testing.T) {
	at := time.Date(2025, time.June, 5, 10, 0, 0, 0, time.UTC)

	meta := map[string]lang.Value{
		"source":  lang.NewString("app.tsk"),
		"builder": lang.NewString("ci"),
	}

	bin, err := Encode(
		testConfig(t),
		WithCompression(CompressZstd),
		WithKey(testKey(t)),
		WithMetadata(meta),
		WithClock(func() time.Time { return at }),
	)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	// Inspect needs no key even for encrypted containers.
	h, m, err := Inspect(bin)
	if err != nil {
		t.Fatalf("inspect error: %v", err)
	}

	if h.Compression != CompressZstd {
		t.Errorf("compression = %v", h.Compression)
	}

	if h.Flags&FlagEncrypted == 0 {
		t.Error("encrypted flag not set")
	}

	if !h.Timestamp.Equal(at) {
		t.Errorf("timestamp = %v, want %v", h.Timestamp, at)
	}

	if got, _ := m.Get("source"); !got.Equal(lang.NewString("app.tsk")) {
		t.Errorf("metadata source = %v", got)
	}
}

func TestDecode_TrailingGarbageInsidePayload(t *testing.T) {
	cfg := lang.NewConfig()
	cfg.Set("k", lang.NewNumber(1))

	// Append a stray byte to the data region and build a header whose
	// checksum and sizes are valid, so only the value decoder can object.
	data, err := EncodeValue(nil, cfg.Root())
	if err != nil {
		t.Fatalf("encode value: %v", err)
	}

	data = append(data, 0x00)

	h := Header{Version: Version, Timestamp: time.Now(), DataSize: uint32(len(data))}
	hdr := h.marshal()

	bin := append(hdr[:], data...)

	if _, err := Decode(bin); !errors.Is(err, ErrTrailingData) {
		t.Errorf("error = %v, want %v", err, ErrTrailingData)
	}
}

package codec

import (
	"crypto/ed25519"
	"log/slog"
	"math"
	"time"

	"github.com/tsklang/tsk/lang"
	"github.com/tsklang/tsk/log"
)

// defaultDecodedLimit caps how far a compressed payload may expand.
const defaultDecodedLimit int64 = 256 << 20

type options struct {
	compression  Compression
	key          []byte
	signKey      ed25519.PrivateKey
	verifyKey    ed25519.PublicKey
	metadata     map[string]lang.Value
	now          func() time.Time
	logger       log.Logger
	decodedLimit int64
}

// Option configures encoding or decoding.
type Option func(*options)

// WithCompression selects the payload compression algorithm.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithKey supplies the symmetric key used to encrypt on Encode and
// decrypt on Decode. The key must be exactly KeySize bytes.
func WithKey(key []byte) Option {
	return func(o *options) { o.key = key }
}

// WithSigningKey makes Encode append an Ed25519 signature over the
// header, data, and metadata regions.
func WithSigningKey(priv ed25519.PrivateKey) Option {
	return func(o *options) { o.signKey = priv }
}

// WithVerifyKey makes Decode verify a signed container against the given
// public key. Signed containers decode without verification when no key
// is supplied.
func WithVerifyKey(pub ed25519.PublicKey) Option {
	return func(o *options) { o.verifyKey = pub }
}

// WithMetadata adds entries to the container's metadata object. The
// metadata region is never compressed or encrypted, so it stays readable
// by Inspect without keys.
func WithMetadata(meta map[string]lang.Value) Option {
	return func(o *options) {
		if o.metadata == nil {
			o.metadata = make(map[string]lang.Value, len(meta))
		}

		for k, v := range meta {
			o.metadata[k] = v
		}
	}
}

// WithClock overrides the time source used for the header timestamp.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger attaches a logger for trace diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDecodedLimit overrides the maximum decompressed payload size.
func WithDecodedLimit(limit int64) Option {
	return func(o *options) { o.decodedLimit = limit }
}

func makeOptions(opts []Option) options {
	o := options{
		now:          time.Now,
		decodedLimit: defaultDecodedLimit,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Encode serializes a configuration into a binary container.
func Encode(cfg *lang.Config, opts ...Option) ([]byte, error) {
	o := makeOptions(opts)

	data, err := EncodeValue(nil, cfg.Root())
	if err != nil {
		return nil, err
	}

	h := Header{
		Version:   Version,
		Timestamp: o.now().UTC(),
	}

	if o.compression != CompressNone {
		data, err = compress(data, o.compression)
		if err != nil {
			return nil, err
		}

		h.Compression = o.compression
		h.Flags |= FlagCompressed
	}

	if o.key != nil {
		if len(o.key) != KeySize {
			return nil, ErrKeySize.With(slog.Int("size", len(o.key)))
		}

		data, err = encrypt(data, o.key)
		if err != nil {
			return nil, err
		}

		h.Encryption = EncryptXChaCha2
		h.Flags |= FlagEncrypted
	}

	var meta []byte
	if len(o.metadata) > 0 {
		meta, err = EncodeValue(nil, lang.NewObject(o.metadata))
		if err != nil {
			return nil, err
		}
	}

	if o.signKey != nil {
		h.Signature = SignEd25519
		h.Flags |= FlagSigned
	}

	if len(data) > math.MaxUint32 || len(meta) > math.MaxUint32 {
		return nil, ErrEncode.
			With(slog.Int("data_size", len(data)), slog.Int("meta_size", len(meta)))
	}

	h.DataSize = uint32(len(data))
	h.MetaSize = uint32(len(meta))

	hdr := h.marshal()

	out := make([]byte, 0, headerSize+len(data)+len(meta)+ed25519SigSize)
	out = append(out, hdr[:]...)
	out = append(out, data...)
	out = append(out, meta...)

	if o.signKey != nil {
		out = append(out, sign(o.signKey, hdr[:], data, meta)...)
	}

	o.logger.Trace("container encoded",
		slog.Any("header", h),
		slog.Int("total_size", len(out)))

	return out, nil
}

// Decode parses a binary container back into a configuration. Validation
// is strict: a bad magic, version, checksum, signature, or truncated
// region fails before any payload decoding happens.
func Decode(data []byte, opts ...Option) (*lang.Config, error) {
	o := makeOptions(opts)

	h, body, _, err := split(data, o)
	if err != nil {
		return nil, err
	}

	if h.Flags&FlagEncrypted != 0 {
		if o.key == nil {
			return nil, ErrKeyRequired
		}

		body, err = decrypt(body, o.key)
		if err != nil {
			return nil, err
		}
	}

	body, err = decompress(body, h.Compression, o.decodedLimit)
	if err != nil {
		return nil, err
	}

	v, n, err := DecodeValue(body)
	if err != nil {
		return nil, err
	}

	if n != len(body) {
		return nil, ErrTrailingData.
			With(slog.Int("consumed", n), slog.Int("length", len(body)))
	}

	cfg := lang.ConfigFromValue(v)
	if cfg == nil {
		return nil, ErrHeaderInvalid.
			With(slog.String("reason", "root value is not an object"))
	}

	o.logger.Trace("container decoded", slog.Any("header", h))

	return cfg, nil
}

// Inspect returns the header and metadata of a container without
// decrypting or decompressing the payload.
func Inspect(data []byte, opts ...Option) (Header, lang.Value, error) {
	o := makeOptions(opts)

	h, _, meta, err := split(data, o)
	if err != nil {
		return Header{}, lang.Value{}, err
	}

	if len(meta) == 0 {
		return h, lang.NewObject(nil), nil
	}

	v, n, err := DecodeValue(meta)
	if err != nil {
		return Header{}, lang.Value{}, err
	}

	if n != len(meta) {
		return Header{}, lang.Value{}, ErrTrailingData.
			With(slog.Int("consumed", n), slog.Int("length", len(meta)))
	}

	return h, v, nil
}

// split validates the header, checks the signature when possible, and
// slices the container into its data and metadata regions.
func split(data []byte, o options) (Header, []byte, []byte, error) {
	h, err := parseHeader(data)
	if err != nil {
		return Header{}, nil, nil, err
	}

	dataEnd := headerSize + int(h.DataSize)
	metaEnd := dataEnd + int(h.MetaSize)

	body := data[headerSize:dataEnd]
	meta := data[dataEnd:metaEnd]

	if h.Flags&FlagSigned != 0 && o.verifyKey != nil {
		sig := data[metaEnd : metaEnd+ed25519SigSize]

		if err := verify(o.verifyKey, sig, data[:headerSize], body, meta); err != nil {
			return Header{}, nil, nil, err
		}
	}

	return h, body, meta, nil
}

package codec

import (
	"encoding/binary"
	"log/slog"
	"time"

	"github.com/zeebo/xxh3"
)

// Version is the container format version this package writes.
const Version uint16 = 1

// headerSize is the fixed byte length of the container header.
const headerSize = 40

// magic identifies a container. The leading non-ASCII byte and the
// CR LF SUB tail catch text-mode transfer mangling, the same trick the
// PNG signature uses.
var magic = [8]byte{0x89, 'T', 'S', 'K', 'B', 0x0D, 0x0A, 0x1A}

// Header flag bits.
const (
	FlagCompressed uint16 = 1 << 0
	FlagEncrypted  uint16 = 1 << 1
	FlagSigned     uint16 = 1 << 2
)

// Compression identifies the payload compression algorithm.
type Compression uint8

const (
	CompressNone Compression = 0
	CompressGzip Compression = 1
	CompressZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressNone:
		return "none"
	case CompressGzip:
		return "gzip"
	case CompressZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Encryption identifies the payload encryption algorithm.
type Encryption uint8

const (
	EncryptNone     Encryption = 0
	EncryptXChaCha2 Encryption = 1 // XChaCha20-Poly1305
)

// Signature identifies the container signature algorithm.
type Signature uint8

const (
	SignNone    Signature = 0
	SignEd25519 Signature = 1
)

const ed25519SigSize = 64

// Header is the fixed-size prefix of every container.
//
// Layout (little endian):
//
//	offset  size  field
//	     0     8  magic
//	     8     2  version
//	    10     2  flags
//	    12     1  compression
//	    13     1  encryption
//	    14     1  signature
//	    15     1  reserved
//	    16     4  data size
//	    20     4  metadata size
//	    24     8  timestamp (unix seconds)
//	    32     8  checksum of bytes 0..32
type Header struct {
	Version     uint16
	Flags       uint16
	Compression Compression
	Encryption  Encryption
	Signature   Signature
	DataSize    uint32
	MetaSize    uint32
	Timestamp   time.Time
	Checksum    uint64
}

// LogValue renders the header for structured logging.
func (h Header) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("version", int(h.Version)),
		slog.String("compression", h.Compression.String()),
		slog.Bool("encrypted", h.Flags&FlagEncrypted != 0),
		slog.Bool("signed", h.Flags&FlagSigned != 0),
		slog.Uint64("data_size", uint64(h.DataSize)),
		slog.Uint64("meta_size", uint64(h.MetaSize)),
		slog.Time("timestamp", h.Timestamp),
	)
}

// marshal writes the header into a fixed array, computing the checksum
// over the preceding fields.
func (h Header) marshal() [headerSize]byte {
	var buf [headerSize]byte

	copy(buf[0:8], magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], h.Version)
	binary.LittleEndian.PutUint16(buf[10:12], h.Flags)
	buf[12] = byte(h.Compression)
	buf[13] = byte(h.Encryption)
	buf[14] = byte(h.Signature)
	buf[15] = 0
	binary.LittleEndian.PutUint32(buf[16:20], h.DataSize)
	binary.LittleEndian.PutUint32(buf[20:24], h.MetaSize)
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.Timestamp.Unix()))
	binary.LittleEndian.PutUint64(buf[32:40], xxh3.Hash(buf[0:32]))

	return buf
}

// parseHeader validates and decodes a container header. It checks the
// magic, version, and checksum before trusting any size field.
func parseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, ErrHeaderInvalid.
			With(slog.Int("length", len(data)))
	}

	if [8]byte(data[0:8]) != magic {
		return Header{}, ErrHeaderInvalid.
			With(slog.String("reason", "bad magic"))
	}

	version := binary.LittleEndian.Uint16(data[8:10])
	if version != Version {
		return Header{}, ErrUnsupportedVersion.
			With(slog.Int("version", int(version)))
	}

	sum := binary.LittleEndian.Uint64(data[32:40])
	if got := xxh3.Hash(data[0:32]); got != sum {
		return Header{}, ErrChecksumMismatch.
			With(
				slog.Uint64("stored", sum),
				slog.Uint64("computed", got),
			)
	}

	h := Header{
		Version:     version,
		Flags:       binary.LittleEndian.Uint16(data[10:12]),
		Compression: Compression(data[12]),
		Encryption:  Encryption(data[13]),
		Signature:   Signature(data[14]),
		DataSize:    binary.LittleEndian.Uint32(data[16:20]),
		MetaSize:    binary.LittleEndian.Uint32(data[20:24]),
		Checksum:    sum,
	}

	sec := int64(binary.LittleEndian.Uint64(data[24:32]))
	h.Timestamp = time.Unix(sec, 0).UTC()

	// The flag bits and the algorithm fields must agree.
	if (h.Flags&FlagCompressed != 0) != (h.Compression != CompressNone) ||
		(h.Flags&FlagEncrypted != 0) != (h.Encryption != EncryptNone) ||
		(h.Flags&FlagSigned != 0) != (h.Signature != SignNone) {
		return Header{}, ErrHeaderInvalid.
			With(slog.String("reason", "flag and algorithm fields disagree"))
	}

	sigSize := 0
	if h.Signature == SignEd25519 {
		sigSize = ed25519SigSize
	}

	total := headerSize + int64(h.DataSize) + int64(h.MetaSize) + int64(sigSize)
	if int64(len(data)) < total {
		return Header{}, ErrTruncatedData.
			With(
				slog.Int64("need", total),
				slog.Int("have", len(data)),
			)
	}

	return h, nil
}

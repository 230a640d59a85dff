package codec

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// compress applies the named algorithm to data. CompressNone returns the
// input unchanged.
func compress(data []byte, alg Compression) ([]byte, error) {
	switch alg {
	case CompressNone:
		return data, nil

	case CompressGzip:
		var buf bytes.Buffer

		zw := gzip.NewWriter(&buf)

		if _, err := zw.Write(data); err != nil {
			return nil, ErrCompression.Wrap(err)
		}

		if err := zw.Close(); err != nil {
			return nil, ErrCompression.Wrap(err)
		}

		return buf.Bytes(), nil

	case CompressZstd:
		zw, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, ErrCompression.Wrap(err)
		}
		defer zw.Close()

		return zw.EncodeAll(data, nil), nil

	default:
		return nil, ErrCompression.
			With(slog.Int("algorithm", int(alg)))
	}
}

// decompress reverses compress. The limit caps the decompressed size so a
// small container cannot expand into an allocation bomb.
func decompress(data []byte, alg Compression, limit int64) ([]byte, error) {
	switch alg {
	case CompressNone:
		return data, nil

	case CompressGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, ErrDecompression.Wrap(err)
		}
		defer zr.Close()

		out, err := io.ReadAll(io.LimitReader(zr, limit+1))
		if err != nil {
			return nil, ErrDecompression.Wrap(err)
		}

		if int64(len(out)) > limit {
			return nil, ErrDecompression.
				With(slog.Int64("limit", limit))
		}

		return out, nil

	case CompressZstd:
		zr, err := zstd.NewReader(nil,
			zstd.WithDecoderMaxMemory(uint64(limit)))
		if err != nil {
			return nil, ErrDecompression.Wrap(err)
		}
		defer zr.Close()

		out, err := zr.DecodeAll(data, nil)
		if err != nil {
			return nil, ErrDecompression.Wrap(err)
		}

		return out, nil

	default:
		return nil, ErrDecompression.
			With(slog.Int("algorithm", int(alg)))
	}
}

// Package codec implements the binary container format for compiled
// configuration documents.
//
// A container is a fixed 40-byte little-endian header followed by the
// encoded value tree, an optional metadata object, and an optional
// signature. The header carries a checksum of its own fixed fields so
// corruption is detected before any payload is touched. The payload may
// be compressed (gzip or zstd), encrypted (XChaCha20-Poly1305), and
// signed (Ed25519), applied in that order on encode and reversed on
// decode.
package codec

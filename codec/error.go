package codec

import "github.com/tsklang/tsk/lang"

// Sentinel errors for container decoding and encoding. Each is a
// [lang.Error], so wrapped instances carry structured context and match
// with errors.Is.
var (
	ErrHeaderInvalid      = lang.NewError("invalid container header")
	ErrChecksumMismatch   = lang.NewError("header checksum mismatch")
	ErrUnsupportedVersion = lang.NewError("unsupported container version")
	ErrTruncatedData      = lang.NewError("truncated container data")
	ErrTrailingData       = lang.NewError("trailing bytes after value")
	ErrUnsupportedTag     = lang.NewError("unsupported value tag")
	ErrNestingTooDeep     = lang.NewError("value nesting too deep")
	ErrKeyRequired        = lang.NewError("decryption key required")
	ErrKeySize            = lang.NewError("invalid key size")
	ErrSignatureInvalid   = lang.NewError("signature verification failed")
	ErrCompression        = lang.NewError("compression failed")
	ErrDecompression      = lang.NewError("decompression failed")
	ErrEncryption         = lang.NewError("encryption failed")
	ErrDecryption         = lang.NewError("decryption failed")
	ErrEncode             = lang.NewError("value encoding failed")
)

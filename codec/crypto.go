package codec

import (
	"crypto/ed25519"
	"crypto/rand"
	"log/slog"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required byte length of an encryption key.
const KeySize = chacha20poly1305.KeySize

// encrypt seals data with XChaCha20-Poly1305 under key. The random
// 24-byte nonce is prepended to the ciphertext.
func encrypt(data, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrKeySize.Wrap(err).
			With(slog.Int("size", len(key)))
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(data)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, ErrEncryption.Wrap(err)
	}

	return aead.Seal(nonce, nonce, data, nil), nil
}

// decrypt opens a sealed payload produced by encrypt.
func decrypt(data, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrKeySize.Wrap(err).
			With(slog.Int("size", len(key)))
	}

	if len(data) < aead.NonceSize() {
		return nil, ErrTruncatedData.
			With(slog.String("reason", "payload shorter than nonce"))
	}

	nonce, sealed := data[:aead.NonceSize()], data[aead.NonceSize():]

	out, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryption.Wrap(err)
	}

	return out, nil
}

// sign computes the Ed25519 signature over the container's header, data,
// and metadata regions.
func sign(priv ed25519.PrivateKey, regions ...[]byte) []byte {
	msg := make([]byte, 0)
	for _, r := range regions {
		msg = append(msg, r...)
	}

	return ed25519.Sign(priv, msg)
}

// verify checks an Ed25519 signature produced by sign.
func verify(pub ed25519.PublicKey, sig []byte, regions ...[]byte) error {
	msg := make([]byte, 0)
	for _, r := range regions {
		msg = append(msg, r...)
	}

	if !ed25519.Verify(pub, msg, sig) {
		return ErrSignatureInvalid
	}

	return nil
}

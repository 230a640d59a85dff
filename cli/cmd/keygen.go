package cmd

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/tsklang/tsk/codec"
	"github.com/tsklang/tsk/lang"
)

// Keygen generates keys for container encryption and signing, printed as
// hex so they can be stored in the key files the other commands read.
type Keygen struct {
	Sign bool `help:"Generate an Ed25519 signing key pair instead of an encryption key."`
}

// Run executes the keygen command.
func (k *Keygen) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	if k.Sign {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return lang.ErrValidation.Wrap(err)
		}

		fmt.Fprintf(os.Stdout, "seed:   %s\n", hex.EncodeToString(priv.Seed()))
		fmt.Fprintf(os.Stdout, "public: %s\n", hex.EncodeToString(pub))

		return nil
	}

	key := make([]byte, codec.KeySize)
	if _, err := rand.Read(key); err != nil {
		return lang.ErrValidation.Wrap(err)
	}

	fmt.Fprintln(os.Stdout, hex.EncodeToString(key))

	return nil
}

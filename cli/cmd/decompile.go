package cmd

import (
	"context"
	"crypto/ed25519"
	"io"
	"log/slog"
	"os"

	"github.com/tsklang/tsk/codec"
	"github.com/tsklang/tsk/lang"
)

// Decompile reads a binary container and prints the configuration.
type Decompile struct {
	Format    string `default:"tsk" enum:"tsk,json,yaml" help:"Output format."        short:"F"`
	KeyFile   string `help:"Hex-encoded 32-byte decryption key file."                 name:"key-file"`
	VerifyKey string `help:"Hex-encoded Ed25519 public key file for verification."    name:"verify-key"`

	Input string `arg:"" default:"-" help:"Container file or '-' for stdin." name:"input"`
}

// Run executes the decompile command.
func (d *Decompile) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	src, err := openSource(d.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return lang.ErrReadInput.Wrap(err).
			With(slog.String("command", "decompile"))
	}

	var opts []codec.Option

	if d.KeyFile != "" {
		key, err := readKeyFile(d.KeyFile, codec.KeySize)
		if err != nil {
			return err
		}

		opts = append(opts, codec.WithKey(key))
	}

	if d.VerifyKey != "" {
		pub, err := readKeyFile(d.VerifyKey, ed25519.PublicKeySize)
		if err != nil {
			return err
		}

		opts = append(opts, codec.WithVerifyKey(ed25519.PublicKey(pub)))
	}

	cfg, err := codec.Decode(data, opts...)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "decompile"))
	}

	out, err := render(cfg, d.Format)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "decompile"))
	}

	_, err = os.Stdout.Write(out)

	return err
}

package cmd

import (
	"context"
	"crypto/ed25519"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsklang/tsk/codec"
	"github.com/tsklang/tsk/lang"
	"github.com/tsklang/tsk/pkg"
)

// Compile parses a document and writes it as a binary container.
type Compile struct {
	Output   string `help:"Output file (default: source with .pnt extension)."            short:"o"`
	Compress string `default:"zstd" enum:"none,gzip,zstd" help:"Payload compression."`
	KeyFile  string `help:"Hex-encoded 32-byte encryption key file."                      name:"key-file"`
	SignKey  string `help:"Hex-encoded Ed25519 seed file for signing."                    name:"sign-key"`
	Strict   bool   `help:"Fail on unresolvable cross-file references."`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	cfg, err := parseSource(ctx, c.Source, c.Strict)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "compile"))
	}

	opts := []codec.Option{
		codec.WithCompression(compressionByName(c.Compress)),
		codec.WithMetadata(map[string]lang.Value{
			"source":    lang.NewString(filepath.Base(c.Source)),
			"generator": lang.NewString(pkg.Name + " " + strings.TrimSpace(pkg.Version)),
		}),
	}

	if c.KeyFile != "" {
		key, err := readKeyFile(c.KeyFile, codec.KeySize)
		if err != nil {
			return err
		}

		opts = append(opts, codec.WithKey(key))
	}

	if c.SignKey != "" {
		seed, err := readKeyFile(c.SignKey, ed25519.SeedSize)
		if err != nil {
			return err
		}

		opts = append(opts, codec.WithSigningKey(ed25519.NewKeyFromSeed(seed)))
	}

	bin, err := codec.Encode(cfg, opts...)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "compile"))
	}

	out := c.Output
	if out == "" {
		if c.Source == stdinSource {
			_, err = os.Stdout.Write(bin)

			return err
		}

		ext := filepath.Ext(c.Source)
		out = strings.TrimSuffix(c.Source, ext) + ".pnt"
	}

	return os.WriteFile(out, bin, 0o644)
}

func compressionByName(name string) codec.Compression {
	switch name {
	case "gzip":
		return codec.CompressGzip
	case "zstd":
		return codec.CompressZstd
	default:
		return codec.CompressNone
	}
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tsklang/tsk/codec"
	"github.com/tsklang/tsk/lang"
)

// Inspect prints a container's header and metadata without decoding,
// decrypting, or decompressing the payload.
type Inspect struct {
	Input string `arg:"" default:"-" help:"Container file or '-' for stdin." name:"input"`
}

// Run executes the inspect command.
func (i *Inspect) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	src, err := openSource(i.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return lang.ErrReadInput.Wrap(err).
			With(slog.String("command", "inspect"))
	}

	h, meta, err := codec.Inspect(data)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "inspect"))
	}

	fmt.Fprintf(os.Stdout, "version:     %d\n", h.Version)
	fmt.Fprintf(os.Stdout, "compression: %s\n", h.Compression)
	fmt.Fprintf(os.Stdout, "encrypted:   %t\n", h.Flags&codec.FlagEncrypted != 0)
	fmt.Fprintf(os.Stdout, "signed:      %t\n", h.Flags&codec.FlagSigned != 0)
	fmt.Fprintf(os.Stdout, "data size:   %d\n", h.DataSize)
	fmt.Fprintf(os.Stdout, "meta size:   %d\n", h.MetaSize)
	fmt.Fprintf(os.Stdout, "timestamp:   %s\n", h.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(os.Stdout, "checksum:    %016x\n", h.Checksum)

	if obj, ok := meta.AsObject(); ok && len(obj) > 0 {
		fmt.Fprintf(os.Stdout, "metadata:    %s\n", meta)
	}

	return nil
}

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/tsklang/tsk/lang"
)

// Fmt rewrites a document in canonical form: sorted keys, one [section]
// per top-level object, and quoted strings.
type Fmt struct {
	Write bool `help:"Rewrite the source file in place instead of printing." short:"w"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	src, err := openSource(f.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return lang.ErrReadInput.Wrap(err).
			With(slog.String("command", "fmt"))
	}

	// Formatting must not execute operators or touch other files, so the
	// document parses with no engine and an empty filesystem.
	cfg, err := lang.Parse(ctx, string(data),
		lang.WithFilesystem(lang.MapFilesystem{}))
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "fmt"))
	}

	text := lang.Serialize(cfg)

	if f.Write && f.Source != stdinSource {
		return os.WriteFile(f.Source, []byte(text), 0o644)
	}

	_, err = io.WriteString(os.Stdout, text)

	return err
}

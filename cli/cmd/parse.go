package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/tsklang/tsk/lang"
)

// Parse parses a document and prints the resolved configuration.
type Parse struct {
	Format string `default:"tsk" enum:"tsk,json,yaml" help:"Output format." short:"F"`
	Strict bool   `help:"Fail on unresolvable cross-file references."`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	cfg, err := parseSource(ctx, p.Source, p.Strict)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "parse"))
	}

	out, err := render(cfg, p.Format)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "parse"))
	}

	_, err = os.Stdout.Write(out)

	return err
}

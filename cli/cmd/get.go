package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tsklang/tsk/lang"
)

// Get parses a document and prints the value at one dotted key path.
type Get struct {
	Key    string `arg:"" help:"Dotted key path (e.g. server.port)." name:"key"`
	Source string `default:"-" help:"Source input file or '-' for stdin." short:"f"`
	Strict bool   `help:"Fail on unresolvable cross-file references."`
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	cfg, err := parseSource(ctx, g.Source, g.Strict)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "get"))
	}

	v, ok := cfg.Get(g.Key)
	if !ok {
		return lang.ErrVariableNotFound.
			With(
				slog.String("command", "get"),
				slog.String("key", g.Key),
			)
	}

	fmt.Println(v.String())

	return nil
}

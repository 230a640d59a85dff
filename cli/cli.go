package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/tsklang/tsk/cli/cmd"
	"github.com/tsklang/tsk/pkg"
)

// CLI is the top-level command-line interface for tsk.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Parse     cmd.Parse     `cmd:"" default:"withargs" help:"Parse a document and print the resolved configuration"`
	Get       cmd.Get       `cmd:"" help:"Print the value at a dotted key path"`
	Fmt       cmd.Fmt       `cmd:"" help:"Rewrite a document in canonical form"`
	Compile   cmd.Compile   `cmd:"" help:"Compile a document to a binary container"`
	Decompile cmd.Decompile `cmd:"" help:"Decode a binary container back to text"`
	Inspect   cmd.Inspect   `cmd:"" help:"Show a container's header and metadata"`
	Keygen    cmd.Keygen    `cmd:"" help:"Generate encryption and signing keys"`
	Version   cmd.Version   `cmd:"" help:"Print version information"`
}

// Run executes the tsk CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				NoExpandSubcommands: true,
			}),
		cli.Pprof.vars(),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cli.Log.start(ctx)

	stop := cli.Pprof.start(ctx)
	defer stop()

	return ktx.Run()
}

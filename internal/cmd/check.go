package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/tilde/internal/syntax"
	"go.followtheprocess.codes/tilde/internal/tilde"
)

const checkLong = `
The path argument may be a directory or a file.

If it is the name of a file, then this file alone is checked
for validity whatever its extension.

If it is a directory, this directory is scanned recursively for all
files with the extensions of the '--from' format ('.txt' and '.edi' for
STRING, '.json' for JSON and '.xml' for XML) and any matching files
will be validated.
`

// check returns the check subcommand.
func check() (*cli.Command, error) {
	var options tilde.CheckOptions

	return cli.New(
		"check",
		cli.Short("Check documents for errors"),
		cli.Long(checkLong),
		cli.Arg(&options.Path, "path", "Path to check, may be directory or file", cli.ArgDefault(".")),
		cli.Flag(&options.From, "from", 'f', "Format of the documents", cli.FlagDefault("STRING")),
		cli.Flag(&options.Config, "config", 'c', "Path to a TOML or YAML config file"),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := tilde.New(options.Debug, version, cmd.Stdin(), cmd.Stdout(), cmd.Stderr())
			return app.Check(ctx, syntax.PrettyConsoleHandler(cmd.Stderr()), options)
		}),
	)
}

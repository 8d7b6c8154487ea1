package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/tilde/internal/syntax"
	"go.followtheprocess.codes/tilde/internal/tilde"
)

const convertLong = `
The document is read from the file argument, or from stdin if the file
is omitted or '-'.

Formats are named STRING (the '~' and '*' delimited text format), JSON
or XML, case insensitive. A format cannot be converted to itself.

The separators used by the delimited format may be changed with a TOML or
YAML config file passed with '--config', or with the TILDE_SEGMENT_SEPARATOR
and TILDE_ELEMENT_SEPARATOR environment variables.
`

// convert returns the convert subcommand.
func convert() (*cli.Command, error) {
	var options tilde.ConvertOptions

	return cli.New(
		"convert",
		cli.Short("Convert a document from one format to another"),
		cli.Long(convertLong),
		cli.Arg(&options.File, "file", "Path to the document, '-' for stdin", cli.ArgDefault("-")),
		cli.Flag(&options.From, "from", 'f', "Format of the document", cli.FlagDefault("STRING")),
		cli.Flag(&options.To, "to", 't', "Format to convert to", cli.FlagDefault("JSON")),
		cli.Flag(&options.Output, "output", 'o', "Name of a file to save the result in"),
		cli.Flag(&options.Config, "config", 'c', "Path to a TOML or YAML config file"),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := tilde.New(options.Debug, version, cmd.Stdin(), cmd.Stdout(), cmd.Stderr())
			return app.Convert(ctx, syntax.PrettyConsoleHandler(cmd.Stderr()), options)
		}),
	)
}

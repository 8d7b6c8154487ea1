// Package cmd implements tilde's CLI.
package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/tilde/internal/format"
)

// Exit statuses.
const (
	exitFailure  = 1 // Anything other than bad input, including internal failures
	exitBadInput = 2 // An invalid document or an unsupported format
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Build builds and returns the tilde CLI.
func Build() (*cli.Command, error) {
	return cli.New(
		"tilde",
		cli.Short("Convert documents between delimited text, JSON and XML"),
		cli.Version(version),
		cli.Commit(commit),
		cli.BuildDate(date),
		cli.Example("Convert a delimited document to JSON", "tilde convert ./orders.txt --from STRING --to JSON"),
		cli.Example("Convert JSON on stdin to XML", "cat orders.json | tilde convert --from JSON --to XML"),
		cli.Example("Check every delimited document under a directory", "tilde check ./documents --from STRING"),
		cli.Example("List the supported conversions", "tilde formats"),
		cli.SubCommands(convert, check, formats),
	)
}

// Execute builds the CLI and runs it with the arguments from the command line.
func Execute(ctx context.Context) error {
	cmd, err := Build()
	if err != nil {
		return err
	}

	return cmd.Execute(ctx)
}

// ExitCode returns the exit status for an error returned from [Execute].
//
// Invalid documents and unsupported formats exit with a different status to
// every other failure so scripts can tell bad input from a broken tilde.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case format.KindOf(err).BadRequest():
		return exitBadInput
	default:
		return exitFailure
	}
}

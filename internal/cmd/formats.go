package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/tilde/internal/tilde"
)

// formats returns the formats subcommand.
func formats() (*cli.Command, error) {
	return cli.New(
		"formats",
		cli.Short("List the supported formats and conversions"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := tilde.New(false, version, cmd.Stdin(), cmd.Stdout(), cmd.Stderr())
			app.Formats()

			return nil
		}),
	)
}

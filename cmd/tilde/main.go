package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.followtheprocess.codes/hue"
	"go.followtheprocess.codes/tilde/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", (hue.Red | hue.Bold).Text("Error:"), err)
		stop()
		os.Exit(cmd.ExitCode(err))
	}
}

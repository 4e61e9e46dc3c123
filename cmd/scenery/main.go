package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gekko3d/scenery/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scenery:", err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}

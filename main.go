package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PolarWolf314/scrub/cmd"
	"github.com/PolarWolf314/scrub/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ScrubCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !cmd.IsReported(err) {
			fmt.Fprintln(os.Stderr, ui.MarkFail+" "+err.Error())
		}
		os.Exit(1)
	}
}

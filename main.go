package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/yaklabco/mmake/cmd/mmake"
	"github.com/yaklabco/mmake/pkg/resolve"
)

func main() {
	os.Exit(actualMain())
}

func actualMain() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := mmake.NewRootCmd(ctx)

	// ExecuteWithFang has already reported err on stderr.
	return resolve.ExitStatus(mmake.ExecuteWithFang(ctx, rootCmd))
}

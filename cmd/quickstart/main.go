package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/doeshing/quickstart-go/internal/infrastructure/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCmd(cli.Options{Verbose: isVerbose()})
	if err := root.ExecuteContext(ctx); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stdout, "error:", err)
		}
		stop()
		os.Exit(cli.ExitCode(err))
	}
}

func isVerbose() bool {
	value := os.Getenv("QUICKSTART_DEBUG")
	return value == "1" || strings.EqualFold(value, "true")
}

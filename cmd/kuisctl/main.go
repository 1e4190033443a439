// Command kuisctl manages the quiz question bank and leaderboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/starquake/kuis/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

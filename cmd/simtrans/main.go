package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/simtrans/simtrans/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		os.Exit(1)
	}
}

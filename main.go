package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/hbagdi/hitview/pkg/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.Run(ctx, os.Args...)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

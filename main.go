// connstate - a connection lifecycle state machine and link driver.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"connstate/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "connstate: %v\n", err)
		os.Exit(1)
	}
}

// Command platecheck checks and applies plate height changes to a building
// model file without running the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	switch {
	case err == nil:
	case errors.Is(err, errViolations):
		os.Exit(2)
	default:
		_, _ = fmt.Fprintln(os.Stderr, "platecheck:", err)
		os.Exit(1)
	}
}

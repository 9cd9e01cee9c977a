// Command s3xfer runs uploads and downloads through the transfer queue
// without a window.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rwx-research/lms-cli/internal/messages"
	"github.com/rwx-research/lms-cli/internal/versions"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	// Failed commands may still have rotated the session through a refresh.
	persistSession()

	if logCloser != nil {
		logCloser.Close()
	}

	if err != nil {
		// Enabling debug output will print stacktraces
		fmt.Fprintf(os.Stderr, "Error: %s\n", messages.ForError(err, Debug))
	}

	if notice := versions.UpdateNotice(); notice != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", notice)
	}

	if err != nil {
		os.Exit(1)
	}
}

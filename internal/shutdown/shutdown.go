// Package shutdown provides a context that is cancelled on SIGINT or SIGTERM.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// New returns a context that is done when the process receives an interrupt
// or termination signal, and the function that releases it.
func New() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-signalCh:
		case <-ctx.Done():
		}
		signal.Stop(signalCh)
		cancel()
	}()

	return ctx, cancel
}

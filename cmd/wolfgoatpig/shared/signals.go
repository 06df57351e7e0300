package shared

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

// SetupSignalHandler creates a context that is cancelled on the first
// interrupt. A second interrupt exits without waiting for in-flight holes.
func SetupSignalHandler(logger zerolog.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received signal, finishing in-flight commands")
		cancel()

		sig = <-sigChan
		logger.Warn().Str("signal", sig.String()).Msg("Second signal, exiting now")
		os.Exit(1)
	}()

	return ctx
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dephub/dephub-requirements/cmd/depcheck/commands"
	"github.com/dephub/dephub-requirements/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	// Setup structured logging
	setupLogging()

	// Create context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Received interrupt signal, shutting down...")
		cancel()
	}()

	err := commands.Execute(ctx, Version, Commit, BuildDate)
	switch {
	case err == nil:
	case errors.Is(err, commands.ErrRequirementsMissing):
		os.Exit(1)
	default:
		log.Error().Err(err).Msg("Command execution failed")
		os.Exit(2)
	}
}

// setupLogging configures the process logger used before and after command execution.
// The global level stays at trace so that command loggers apply their own level.
func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	// Use console writer for human-readable output
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(telemetry.ParseLevel(os.Getenv("LOG_LEVEL")))
}

// Command feedbackd serves the feedback API and carries the operator
// tooling for its credentials.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/kbukum/feedback/version"
)

func newCLI() *cli.App {
	return &cli.App{
		Name:    serviceName,
		Usage:   "Authentication and role authorization for the feedback API",
		Version: version.Get().String(),
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			hashPasswordCmd(),
			issueTokenCmd(),
			generateSecretCmd(),
		},
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newCLI().RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("feedbackd failed")
		cancel()
		os.Exit(1)
	}
}

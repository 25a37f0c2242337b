// Package main provides operion-console, a command line editor for process
// groups and their message correlations.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/operion-console/pkg/log"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
)

const defaultRateLimit = 10

func main() {
	_ = godotenv.Load(".env")

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:                      "operion-console",
		Usage:                     "Inspect and edit process group message correlations",
		EnableShellCompletion:     true,
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend-url",
				Usage:   "Base URL of the process group backend",
				Sources: cli.EnvVars("BACKEND_URL"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token sent to the backend",
				Sources: cli.EnvVars("BACKEND_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Edit process groups in local persistence instead of a backend",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format (json, yaml)",
				Value:   formatJSON,
				Sources: cli.EnvVars("OUTPUT"),
				Validator: func(format string) error {
					if format != formatJSON && format != formatYAML {
						return fmt.Errorf("%w: %s", errUnknownFormat, format)
					}

					return nil
				},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.SetupWriter(command.ErrWriter, command.String("log-level"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			groupsCommand(),
			messagesCommand(),
			eventsCommand(),
		},
	}
}

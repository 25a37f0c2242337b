package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dukex/operion-console/pkg/cmd"
	"github.com/dukex/operion-console/pkg/otelhelper"
	"github.com/dukex/operion-console/pkg/services"
	cli "github.com/urfave/cli/v3"
)

var errNoStore = errors.New("either --backend-url or --database-url is required")

// console is what every subcommand works against.
type console struct {
	stores   *cmd.Stores
	messages *services.Messages
}

func openConsole(ctx context.Context, command *cli.Command) (*console, error) {
	backendURL := command.String("backend-url")
	databaseURL := command.String("database-url")

	if backendURL == "" && databaseURL == "" {
		return nil, errNoStore
	}

	logger := slog.Default().With("module", "console")

	stores, err := cmd.NewStores(ctx, cmd.StoreConfig{
		BackendURL:   backendURL,
		BackendToken: command.String("token"),
		RateLimit:    defaultRateLimit,
		DatabaseURL:  databaseURL,
	}, nil, nil, otelhelper.NoopTracer(), logger)
	if err != nil {
		return nil, err
	}

	return &console{
		stores:   stores,
		messages: services.NewMessages(stores.Store, nil, nil, logger),
	}, nil
}

func (c *console) close(ctx context.Context) {
	if err := c.stores.Close(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "Failed to close persistence", "error", err)
	}
}

// withConsole runs action against an opened console.
func withConsole(action func(ctx context.Context, command *cli.Command, c *console) error) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		c, err := openConsole(ctx, command)
		if err != nil {
			return err
		}
		defer c.close(ctx)

		return action(ctx, command, c)
	}
}

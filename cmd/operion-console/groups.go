package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/operion-console/pkg/services"
	"github.com/dukex/operion-console/pkg/web"
	cli "github.com/urfave/cli/v3"
)

var (
	errMissingArgument = errors.New("missing argument")
	errListUnsupported = errors.New("listing process groups needs --database-url")
)

func groupsCommand() *cli.Command {
	return &cli.Command{
		Name:    "groups",
		Aliases: []string{"g"},
		Usage:   "Manage process groups",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print a process group",
				ArgsUsage: "<process-group-id>",
				Action: withConsole(func(ctx context.Context, command *cli.Command, c *console) error {
					id, err := argument(command, 0, "process-group-id")
					if err != nil {
						return err
					}

					group, err := c.stores.Store.Get(ctx, id)
					if err != nil {
						return err
					}

					return printResult(command, group)
				}),
			},
			{
				Name:  "list",
				Usage: "List process groups in local persistence",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of groups"},
					&cli.IntFlag{Name: "offset", Usage: "Number of groups to skip"},
				},
				Action: withConsole(func(ctx context.Context, command *cli.Command, c *console) error {
					if c.stores.Catalog == nil {
						return errListUnsupported
					}

					result, err := c.stores.Catalog.List(ctx, services.ListProcessGroupsRequest{
						Limit:  command.Int("limit"),
						Offset: command.Int("offset"),
					})
					if err != nil {
						return err
					}

					return printResult(command, result)
				}),
			},
			{
				Name:  "create",
				Usage: "Create an empty process group",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "display-name", Required: true, Usage: "Human readable name"},
					&cli.StringFlag{Name: "id", Usage: "Identifier, derived from the display name when empty"},
					&cli.StringFlag{Name: "parent", Usage: "Identifier of the enclosing process group"},
					&cli.StringFlag{Name: "description", Usage: "Free text description"},
				},
				Action: withConsole(func(ctx context.Context, command *cli.Command, c *console) error {
					req := web.CreateProcessGroupRequest{
						ID:          command.String("id"),
						ParentID:    command.String("parent"),
						DisplayName: command.String("display-name"),
						Description: command.String("description"),
					}

					if err := web.NewValidator().Struct(req); err != nil {
						return fmt.Errorf("invalid process group: %w", err)
					}

					group := req.ToProcessGroup()
					if err := services.PrepareProcessGroup("create", group); err != nil {
						return err
					}

					created, err := c.stores.Store.Create(ctx, group)
					if err != nil {
						return err
					}

					return printResult(command, created)
				}),
			},
		},
	}
}

func argument(command *cli.Command, n int, name string) (string, error) {
	value := command.Args().Get(n)
	if value == "" {
		return "", fmt.Errorf("%w: %s", errMissingArgument, name)
	}

	return value, nil
}

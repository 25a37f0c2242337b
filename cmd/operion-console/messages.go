package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/operion-console/pkg/correlation"
	cli "github.com/urfave/cli/v3"
)

var errInvalidProperty = errors.New("property must look like id=expression")

func messagesCommand() *cli.Command {
	return &cli.Command{
		Name:    "messages",
		Aliases: []string{"m"},
		Usage:   "Edit the messages of a process group",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List messages grouped by correlation key",
				ArgsUsage: "<process-group-id>",
				Action: withConsole(func(ctx context.Context, command *cli.Command, c *console) error {
					groupID, err := argument(command, 0, "process-group-id")
					if err != nil {
						return err
					}

					buckets, err := c.messages.ListByKey(ctx, groupID)
					if err != nil {
						return err
					}

					return printResult(command, buckets)
				}),
			},
			{
				Name:      "form",
				Usage:     "Print the correlation form of a message",
				ArgsUsage: "<process-group-id> <message-id>",
				Action: withConsole(func(ctx context.Context, command *cli.Command, c *console) error {
					groupID, messageID, err := messageArguments(command)
					if err != nil {
						return err
					}

					form, err := c.messages.GetForm(ctx, groupID, messageID)
					if err != nil {
						return err
					}

					return printResult(command, form.FormData)
				}),
			},
			{
				Name:      "set",
				Usage:     "Replace the correlation properties of a message, creating it if needed",
				ArgsUsage: "<process-group-id> <message-id>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "property",
						Aliases: []string{"p"},
						Usage:   "Correlation property as id=expression, repeatable. None clears the message's properties",
					},
				},
				Action: withConsole(func(ctx context.Context, command *cli.Command, c *console) error {
					groupID, messageID, err := messageArguments(command)
					if err != nil {
						return err
					}

					props, err := parseProperties(command.StringSlice("property"))
					if err != nil {
						return err
					}

					saved, err := c.messages.SubmitForm(ctx, groupID, messageID, correlation.MessageForm{
						ProcessGroupIdentifier: groupID,
						MessageID:              messageID,
						CorrelationProperties:  props,
					})
					if err != nil {
						return err
					}

					return printResult(command, correlation.ToForm(saved, messageID))
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a message and its retrieval expressions",
				ArgsUsage: "<process-group-id> <message-id>",
				Action: withConsole(func(ctx context.Context, command *cli.Command, c *console) error {
					groupID, messageID, err := messageArguments(command)
					if err != nil {
						return err
					}

					saved, err := c.messages.Delete(ctx, groupID, messageID)
					if err != nil {
						return err
					}

					return printResult(command, correlation.GroupMessagesByKey(saved))
				}),
			},
		},
	}
}

func messageArguments(command *cli.Command) (string, string, error) {
	groupID, err := argument(command, 0, "process-group-id")
	if err != nil {
		return "", "", err
	}

	messageID, err := argument(command, 1, "message-id")
	if err != nil {
		return "", "", err
	}

	return groupID, messageID, nil
}

// parseProperties splits each id=expression pair at the first '='.
func parseProperties(values []string) ([]correlation.FormCorrelationProperty, error) {
	props := make([]correlation.FormCorrelationProperty, 0, len(values))

	for _, value := range values {
		id, expr, found := strings.Cut(value, "=")

		id = strings.TrimSpace(id)
		expr = strings.TrimSpace(expr)

		if !found || id == "" || expr == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidProperty, value)
		}

		props = append(props, correlation.FormCorrelationProperty{ID: id, RetrievalExpression: expr})
	}

	return props, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dukex/operion-console/pkg/cmd"
	"github.com/dukex/operion-console/pkg/eventbus"
	"github.com/dukex/operion-console/pkg/events"
	cli "github.com/urfave/cli/v3"
)

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Follow process group change events",
		Commands: []*cli.Command{
			{
				Name:  "watch",
				Usage: "Print console events as they are published",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "event-bus",
						Usage:   "Event bus type (gochannel, kafka)",
						Value:   "kafka",
						Sources: cli.EnvVars("EVENT_BUS_TYPE"),
					},
					&cli.StringFlag{
						Name:    "kafka-brokers",
						Usage:   "Comma separated Kafka brokers",
						Sources: cli.EnvVars("KAFKA_BROKERS"),
					},
					&cli.StringFlag{
						Name:    "consumer-group",
						Usage:   "Kafka consumer group",
						Value:   "operion-console-watch",
						Sources: cli.EnvVars("KAFKA_CONSUMER_GROUP"),
					},
					&cli.StringSliceFlag{
						Name:  "type",
						Usage: "Only print these event types, repeatable",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					bus, err := cmd.NewEventBus(
						command.String("event-bus"),
						command.String("kafka-brokers"),
						command.String("consumer-group"),
						slog.Default(),
					)
					if err != nil {
						return err
					}

					defer func() {
						if err := bus.Close(); err != nil {
							slog.Default().ErrorContext(ctx, "Failed to close event bus", "error", err)
						}
					}()

					if err := watch(ctx, bus, command, eventTypes(command.StringSlice("type"))); err != nil {
						return err
					}

					<-ctx.Done()

					return nil
				},
			},
		},
	}
}

func eventTypes(filter []string) []events.EventType {
	if len(filter) == 0 {
		return events.Types()
	}

	types := make([]events.EventType, 0, len(filter))
	for _, t := range filter {
		types = append(types, events.EventType(t))
	}

	return types
}

// watch registers a printing handler for each type and subscribes.
func watch(ctx context.Context, bus eventbus.EventSubscriber, command *cli.Command, types []events.EventType) error {
	var mu sync.Mutex

	for _, eventType := range types {
		err := bus.Handle(eventType, func(_ context.Context, event any) error {
			mu.Lock()
			defer mu.Unlock()

			return printResult(command, event)
		})
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", eventType, err)
		}
	}

	return bus.Subscribe(ctx)
}

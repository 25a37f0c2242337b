package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/operion-console/pkg/eventbus"
	"github.com/dukex/operion-console/pkg/events"
)

// auditEvents logs every console event seen on the bus.
func auditEvents(ctx context.Context, bus eventbus.EventSubscriber, logger *slog.Logger) error {
	for _, eventType := range events.Types() {
		err := bus.Handle(eventType, func(ctx context.Context, event any) error {
			logger.InfoContext(ctx, "Console event", "event_type", eventType, "event", event)

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	if err := bus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to console events: %w", err)
	}

	return nil
}

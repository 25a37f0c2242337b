package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/operion-console/pkg/eventbus"
	"github.com/dukex/operion-console/pkg/gateway"
	"github.com/dukex/operion-console/pkg/metrics"
	"github.com/dukex/operion-console/pkg/persistence"
	"github.com/dukex/operion-console/pkg/services"
	"go.opentelemetry.io/otel/trace"
)

// StoreConfig selects where process groups live. A BackendURL wins over
// DatabaseURL.
type StoreConfig struct {
	BackendURL   string
	BackendToken string
	RateLimit    float64
	DatabaseURL  string
}

// Stores is the result of NewStores. Catalog and Persistence are nil when
// a remote backend is used.
type Stores struct {
	Store       services.Store
	Catalog     *services.ProcessGroups
	Persistence persistence.Persistence
	Health      func(ctx context.Context) (string, bool)
}

func NewStores(ctx context.Context, cfg StoreConfig, publisher eventbus.EventPublisher, m *metrics.Metrics, tracer trace.Tracer, logger *slog.Logger) (*Stores, error) {
	if cfg.BackendURL != "" {
		client, err := gateway.NewClient(cfg.BackendURL,
			gateway.WithToken(cfg.BackendToken),
			gateway.WithRateLimit(cfg.RateLimit, 1),
			gateway.WithTracer(tracer),
			gateway.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}

		return &Stores{
			Store: client,
			Health: func(context.Context) (string, bool) {
				return "Remote backend at " + cfg.BackendURL, true
			},
		}, nil
	}

	p, err := NewPersistence(ctx, logger, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	groups := services.NewProcessGroups(p, publisher, m, logger)

	return &Stores{
		Store:       groups,
		Catalog:     groups,
		Persistence: p,
		Health:      groups.HealthCheck,
	}, nil
}

// Close releases local persistence, if any.
func (s *Stores) Close(ctx context.Context) error {
	if s.Persistence == nil {
		return nil
	}

	return s.Persistence.Close(ctx)
}

// Package main provides the Operion Console API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/operion-console/pkg/eventbus"
	"github.com/dukex/operion-console/pkg/metrics"
	"github.com/dukex/operion-console/pkg/services"
	"github.com/dukex/operion-console/pkg/web"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type API struct {
	logger    *slog.Logger
	store     services.Store
	catalog   *services.ProcessGroups
	health    web.HealthChecker
	publisher eventbus.EventPublisher
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
}

// NewAPI builds the server. catalog may be nil, see web.NewAPIHandlers.
func NewAPI(
	logger *slog.Logger,
	store services.Store,
	catalog *services.ProcessGroups,
	health web.HealthChecker,
	publisher eventbus.EventPublisher,
	registry *prometheus.Registry,
	m *metrics.Metrics,
) *API {
	return &API{
		logger:    logger,
		store:     store,
		catalog:   catalog,
		health:    health,
		publisher: publisher,
		metrics:   m,
		registry:  registry,
	}
}

func (a *API) App() *fiber.App {
	messages := services.NewMessages(a.store, a.publisher, a.metrics, a.logger)
	handlers := web.NewAPIHandlers(a.store, a.catalog, messages, web.NewValidator(), a.health)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Operion Console API")
	})

	if a.registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	}

	handlers.Register(app)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}

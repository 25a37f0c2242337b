package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dukex/operion-console/pkg/cmd"
	"github.com/dukex/operion-console/pkg/log"
	"github.com/dukex/operion-console/pkg/metrics"
	"github.com/dukex/operion-console/pkg/otelhelper"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort      = 9092
	defaultRateLimit = 10
	serviceName      = "operion-console-api"
)

func main() {
	_ = godotenv.Load(".env")

	cmd := &cli.Command{
		Name:                  "operion-console-api",
		Usage:                 "Edit process groups and their message correlations",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence (file path, postgres:// or redis://)",
				Value:   "./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "backend-url",
				Usage:   "Base URL of a remote process group backend. Overrides --database-url",
				Sources: cli.EnvVars("BACKEND_URL"),
			},
			&cli.StringFlag{
				Name:    "backend-token",
				Usage:   "Bearer token sent to the remote backend",
				Sources: cli.EnvVars("BACKEND_TOKEN"),
			},
			&cli.FloatFlag{
				Name:    "backend-rate-limit",
				Usage:   "Maximum requests per second sent to the remote backend (0 disables)",
				Value:   defaultRateLimit,
				Sources: cli.EnvVars("BACKEND_RATE_LIMIT"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := setupLogger(command.ErrWriter, command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Operion Console API")

			tracer := otelhelper.NoopTracer()
			if command.Bool("tracing") {
				var err error

				tracer, err = otelhelper.NewTracer(ctx, serviceName)
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}
			}

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), serviceName, logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			m := metrics.New(registry)

			stores, err := cmd.NewStores(ctx, cmd.StoreConfig{
				BackendURL:   command.String("backend-url"),
				BackendToken: command.String("backend-token"),
				RateLimit:    command.Float("backend-rate-limit"),
				DatabaseURL:  command.String("database-url"),
			}, eventBus, m, tracer, logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := stores.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			if err := auditEvents(ctx, eventBus, logger); err != nil {
				return err
			}

			api := NewAPI(logger, stores.Store, stores.Catalog, stores.Health, eventBus, registry, m)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start console API", "error", err)
			}

			return nil
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

// setupLogger installs the default handler first, so the module logger
// derives from it and honours the configured level.
func setupLogger(w io.Writer, level string) *slog.Logger {
	log.SetupWriter(w, level)

	return log.WithModule("console-api")
}

package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orderhub/order-svc/internal/breaker"
	customerdal "github.com/orderhub/order-svc/internal/dal/customer"
	"github.com/orderhub/order-svc/internal/dal/postgres"
	"github.com/orderhub/order-svc/internal/dal/rabbitmq"
	outboxrepo "github.com/orderhub/order-svc/internal/dal/repositories/outbox/postgres"
	"github.com/orderhub/order-svc/internal/otel"
	"github.com/orderhub/order-svc/internal/service/services/ordersvc"
	httptransport "github.com/orderhub/order-svc/internal/transport/http"
	outboxworker "github.com/orderhub/order-svc/internal/worker/outbox"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	outboxWorker   *outboxworker.Worker
	otelController *otel.OtelController
	workerCancel   context.CancelFunc
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	customerClient := customerdal.MustNewClient()
	breakerRegistry := breaker.NewRegistry(breaker.ConfigFromViper())

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithCustomerClient(customerClient),
		ordersvc.WithBreaker(breakerRegistry),
	)

	transport := httptransport.NewHTTPTransport(orderSvc)
	transport.RegisterRoutes()

	worker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		orderSvc:       orderSvc,
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		outboxWorker:   worker,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.workerCancel()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}

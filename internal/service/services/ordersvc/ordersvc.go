package ordersvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	customerdal "github.com/orderhub/order-svc/internal/dal/customer"
	"github.com/orderhub/order-svc/internal/dal/interfaces/iorderrepo"
	"github.com/orderhub/order-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/orderhub/order-svc/internal/dal/postgres"
	"github.com/orderhub/order-svc/internal/dal/uow"
	"github.com/orderhub/order-svc/internal/service/models/customer"
	"github.com/orderhub/order-svc/internal/service/models/order"
	"github.com/orderhub/order-svc/internal/service/models/outbox"
)

// customerDependencyKey is the circuit breaker key guarding the customer
// service.
const customerDependencyKey = "customer"

// unitOfWork groups repository access with an optional transaction.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// customerClient resolves customer ids against the customer service.
type customerClient interface {
	Lookup(ctx context.Context, customerID string) customerdal.LookupResult
}

// circuitBreaker guards calls to remote dependencies.
type circuitBreaker interface {
	TryAcquire(key string) bool
	RecordSuccess(key string)
	RecordFailure(key string)
}

// OrderService is a service for managing and enriching orders.
type OrderService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
	customers  customerClient
	breaker    circuitBreaker
}

func (s *OrderService) newUOW() unitOfWork {
	return s.uowFactory()
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.uowFactory == nil {
		panic("ordersvc: no unit of work source configured")
	}
	if s.customers == nil {
		panic("ordersvc: no customer client configured")
	}
	if s.breaker == nil {
		panic("ordersvc: no circuit breaker configured")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
		s.uowFactory = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithCustomerClient sets the customer service client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCustomerClient(client customerClient) option {
	return func(s *OrderService) {
		s.customers = client
	}
}

// WithBreaker sets the circuit breaker registry shared across the process.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBreaker(b circuitBreaker) option {
	return func(s *OrderService) {
		s.breaker = b
	}
}

// WithUnitOfWorkFactory overrides the unit of work source. Used by tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// resolveProfile resolves a customer id under the breaker policy. It never
// fails: whenever the real customer cannot be resolved the fixed fallback
// profile is substituted.
func (s *OrderService) resolveProfile(ctx context.Context, customerID string) customer.Profile {
	if !s.breaker.TryAcquire(customerDependencyKey) {
		// Circuit open: no network attempt, no new failure recorded.
		return customer.Fallback()
	}

	result := s.customers.Lookup(ctx, customerID)
	switch result.Outcome {
	case customerdal.OutcomeFound:
		s.breaker.RecordSuccess(customerDependencyKey)

		return result.Profile
	case customerdal.OutcomeNotFound:
		// The dependency answered correctly; absence is a business outcome,
		// not a fault.
		s.breaker.RecordSuccess(customerDependencyKey)

		return customer.Fallback()
	default:
		s.breaker.RecordFailure(customerDependencyKey)
		slog.Warn("Customer lookup failed, substituting fallback profile",
			"customer_id", customerID,
			"error", result.Err,
		)

		return customer.Fallback()
	}
}

// EnrichOne annotates a single order with the owning customer's display name.
// It always returns a usable result.
func (s *OrderService) EnrichOne(ctx context.Context, o order.Order) order.EnrichedOrder {
	profile := s.resolveProfile(ctx, o.CustomerID)

	return order.EnrichedOrder{
		Order:               o,
		CustomerDisplayName: profile.DisplayName,
	}
}

// EnrichMany enriches a collection of orders. The per-order lookups run
// concurrently; the result preserves the input order regardless of completion
// order.
func (s *OrderService) EnrichMany(ctx context.Context, orders []order.Order) []order.EnrichedOrder {
	enriched := make([]order.EnrichedOrder, len(orders))

	var wg sync.WaitGroup
	for i := range orders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			enriched[i] = s.EnrichOne(ctx, orders[i])
		}(i)
	}
	wg.Wait()

	return enriched
}

// GetOrder retrieves a single order enriched with the customer display name.
// Returns order.ErrOrderNotFound when no such order exists.
func (s *OrderService) GetOrder(ctx context.Context, id string) (order.EnrichedOrder, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.GetOrder")
	defer span.End()

	o, err := s.newUOW().OrderRepository().GetByID(ctx, id)
	if err != nil {
		return order.EnrichedOrder{}, err
	}

	return s.EnrichOne(ctx, o), nil
}

// GetOrders retrieves all orders, each enriched with its customer display
// name.
func (s *OrderService) GetOrders(ctx context.Context) ([]order.EnrichedOrder, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.GetOrders")
	defer span.End()

	orders, err := s.newUOW().OrderRepository().Query(ctx, nil)
	if err != nil {
		return nil, err
	}

	return s.EnrichMany(ctx, orders), nil
}

// GetOrdersByCustomerID resolves the customer once under the breaker policy,
// then stamps every order of that customer with the resolved display name.
// An empty result is an empty slice, not an error.
func (s *OrderService) GetOrdersByCustomerID(
	ctx context.Context,
	customerID string,
) (customer.Profile, []order.EnrichedOrder, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.GetOrdersByCustomerID")
	defer span.End()

	profile := s.resolveProfile(ctx, customerID)

	orders, err := s.newUOW().OrderRepository().Query(ctx, &order.QueryOrdersModel{
		CustomerIDPattern: customerID,
	})
	if err != nil {
		return customer.Profile{}, nil, err
	}

	enriched := make([]order.EnrichedOrder, len(orders))
	for i, o := range orders {
		enriched[i] = order.EnrichedOrder{
			Order:               o,
			CustomerDisplayName: profile.DisplayName,
		}
	}

	return profile, enriched, nil
}

// CreateOrder validates and stores a new order, writing an order-created
// event to the outbox in the same transaction.
func (s *OrderService) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	o.Normalize()
	if err := o.Validate(); err != nil {
		return order.Order{}, err
	}

	now := time.Now()
	o.ID = uuid.NewString()
	o.Version = 0
	o.CreatedAt = now
	o.UpdatedAt = now

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to begin transaction: %w", err)
	}

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		_ = work.Rollback(ctx)

		return order.Order{}, err
	}

	msg, err := newOrderCreatedMessage(inserted, now)
	if err != nil {
		_ = work.Rollback(ctx)

		return order.Order{}, err
	}

	if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		_ = work.Rollback(ctx)

		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

// newOrderCreatedMessage builds the outbox row for an order-created event.
func newOrderCreatedMessage(o order.Order, now time.Time) (outbox.Message, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return outbox.Message{}, fmt.Errorf("failed to encode order event: %w", err)
	}

	maxRetries := viper.GetInt("rabbitmq.outbox.max_retries")
	if maxRetries == 0 {
		maxRetries = 5
	}

	return outbox.Message{
		QueueName:    viper.GetString("rabbitmq.orders.queue_name"),
		ExchangeName: viper.GetString("rabbitmq.orders.exchange_name"),
		RoutingKey:   "order.created",
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   maxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}, nil
}

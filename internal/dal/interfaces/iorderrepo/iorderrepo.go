package iorderrepo

import (
	"context"

	"github.com/orderhub/order-svc/internal/service/models/order"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	// Insert stores a new order and returns it as persisted
	Insert(ctx context.Context, o order.Order) (order.Order, error)

	// GetByID retrieves a single order, order.ErrOrderNotFound when absent
	GetByID(ctx context.Context, id string) (order.Order, error)

	// Query retrieves orders matching the filter; an empty filter returns all
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}

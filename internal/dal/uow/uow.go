package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/orderhub/order-svc/internal/dal/interfaces/iorderrepo"
	"github.com/orderhub/order-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/orderhub/order-svc/internal/dal/postgres"
	orderrepo "github.com/orderhub/order-svc/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/orderhub/order-svc/internal/dal/repositories/outbox/postgres"
)

type unitOfWork struct {
	client     *postgres.Client
	tx         pgx.Tx
	orderRepo  iorderrepo.IOrderRepository
	outboxRepo ioutboxrepo.IOutboxRepository
}

// NewUnitOfWork creates a unit of work over the pooled connection. Until
// Begin is called the repositories run outside a transaction.
func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	return &unitOfWork{
		client:     client,
		orderRepo:  orderrepo.NewPostgresOrderRepository(client.Pool()),
		outboxRepo: outboxrepo.NewOutboxRepository(client.Pool()),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}

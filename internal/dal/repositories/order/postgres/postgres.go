package postgresrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/orderhub/order-svc/internal/service/models/order"
)

// OrderDal represents the order data access layer model. Line items are kept
// in a jsonb column: they have no identity of their own and always travel
// with the order.
type OrderDal struct {
	Id         string    `db:"id"`
	Version    int64     `db:"version"`
	OrderDate  time.Time `db:"order_date"`
	CustomerId string    `db:"customer_id"`
	LineItems  []byte    `db:"line_items"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	var items []order.LineItem
	if err := json.Unmarshal(o.LineItems, &items); err != nil {
		return nil, fmt.Errorf("failed to decode line items: %w", err)
	}

	return &order.Order{
		ID:         o.Id,
		Version:    o.Version,
		Date:       order.Date{Time: o.OrderDate},
		CustomerID: o.CustomerId,
		LineItems:  items,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}, nil
}

// OrderDalFromModel converts the service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) (*OrderDal, error) {
	items, err := json.Marshal(o.LineItems)
	if err != nil {
		return nil, fmt.Errorf("failed to encode line items: %w", err)
	}

	return &OrderDal{
		Id:         o.ID,
		Version:    o.Version,
		OrderDate:  o.Date.Time,
		CustomerId: o.CustomerID,
		LineItems:  items,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}, nil
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const orderColumns = "id, version, order_date, customer_id, line_items, created_at, updated_at"

// Insert stores a new order and returns it as persisted.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	dal, err := OrderDalFromModel(&o)
	if err != nil {
		return order.Order{}, err
	}

	query, args, err := r.sb.Insert("orders").
		Columns("id", "version", "order_date", "customer_id", "line_items", "created_at", "updated_at").
		Values(
			dal.Id,
			dal.Version,
			dal.OrderDate,
			dal.CustomerId,
			sq.Expr("?::jsonb", string(dal.LineItems)),
			dal.CreatedAt,
			dal.UpdatedAt,
		).
		Suffix("RETURNING " + orderColumns).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	row := r.conn.QueryRow(ctx, query, args...)

	inserted, err := scanOrder(row)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return *inserted, nil
}

// GetByID retrieves a single order. Returns order.ErrOrderNotFound when no
// row matches.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (order.Order, error) {
	query, args, err := r.sb.Select(orderColumns).
		From("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build select query: %w", err)
	}

	row := r.conn.QueryRow(ctx, query, args...)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, order.ErrOrderNotFound
		}

		return order.Order{}, fmt.Errorf("failed to get order by id: %w", err)
	}

	return *o, nil
}

// Query retrieves orders matching the filter. An empty filter returns all
// orders; a customer id pattern matches case-insensitively as a substring.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := r.sb.Select(orderColumns).
		From("orders").
		OrderBy("created_at ASC")

	if filter != nil {
		if filter.CustomerIDPattern != "" {
			builder = builder.Where(sq.ILike{"customer_id": "%" + filter.CustomerIDPattern + "%"})
		}
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.Version,
		&dal.OrderDate,
		&dal.CustomerId,
		&dal.LineItems,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return dal.ToModel()
}

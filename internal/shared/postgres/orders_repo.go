package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fooddelivery/internal/domain/orders"
	"fooddelivery/internal/ports"
)

// OrdersRepo implements the narrow persistence contract against the order
// service's table: read a row, overwrite its status.
type OrdersRepo struct{}

// NewOrdersRepo constructs a new OrdersRepo.
func NewOrdersRepo() ports.OrderRepository {
	return &OrdersRepo{}
}

// GetByID retrieves an order by id.
func (r *OrdersRepo) GetByID(ctx context.Context, id int64) (*orders.Order, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var o orders.Order
	err = tx.QueryRow(ctx, `
		SELECT id, total_price, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, orders.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &o, nil
}

// UpdateStatus overwrites the order's status with the given string verbatim.
// No transition validation happens here: events win.
func (r *OrdersRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2
	`, status, id)
	return err
}

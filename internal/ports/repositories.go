package ports

import (
	"context"

	"fooddelivery/internal/domain/deliveries"
	"fooddelivery/internal/domain/orders"
)

// UnitOfWork wraps a function in a DB transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DeliveryRepository persists deliveries. ExistsForOrder backs the worker's
// idempotency check under at-least-once redelivery.
type DeliveryRepository interface {
	ExistsForOrder(ctx context.Context, orderID int64) (bool, error)
	Create(ctx context.Context, d *deliveries.Delivery) error
	UpdateStatus(ctx context.Context, id int64, status deliveries.Status) error
}

// OrderRepository reads and mutates the order rows owned by the order
// service. Only the status field is ever written from here.
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*orders.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

package postgres

import (
	"context"

	"fooddelivery/internal/domain/deliveries"
	"fooddelivery/internal/ports"
)

// DeliveriesRepo implements delivery persistence using pgx and SQL.
type DeliveriesRepo struct{}

// NewDeliveriesRepo constructs a new DeliveriesRepo.
func NewDeliveriesRepo() ports.DeliveryRepository {
	return &DeliveriesRepo{}
}

// ExistsForOrder reports whether a delivery row exists for the order.
func (r *DeliveriesRepo) ExistsForOrder(ctx context.Context, orderID int64) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM deliveries WHERE order_id = $1)
	`, orderID).Scan(&exists)
	return exists, err
}

// Create inserts the delivery and fills in its id and timestamps.
func (r *DeliveriesRepo) Create(ctx context.Context, d *deliveries.Delivery) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	return tx.QueryRow(ctx, `
		INSERT INTO deliveries (order_id, status, start_location, end_location, distance_km, estimated_seconds)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`,
		d.OrderID,
		d.Status,
		d.StartLocation,
		d.EndLocation,
		d.DistanceKm,
		d.EstimatedSeconds,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// UpdateStatus advances the delivery's status.
func (r *DeliveriesRepo) UpdateStatus(ctx context.Context, id int64, status deliveries.Status) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE deliveries
		SET status = $1, updated_at = now()
		WHERE id = $2
	`, status, id)
	return err
}

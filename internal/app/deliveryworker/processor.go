package deliveryworker

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"fooddelivery/internal/domain/deliveries"
	"fooddelivery/internal/domain/orders"
	"fooddelivery/internal/geo"
	"fooddelivery/internal/orderapi"
	"fooddelivery/internal/ports"
	"fooddelivery/internal/shared/contracts"
	"fooddelivery/internal/shared/rabbitmq"
)

// Processor handles one delivery trigger end-to-end: idempotency check,
// address resolution over the read contract, distance estimation, delivery
// creation and the status event back to the order side.
type Processor struct {
	uow       ports.UnitOfWork
	repo      ports.DeliveryRepository
	reader    ports.OrderReader
	estimator ports.RouteEstimator
	pub       ports.Publisher
	log       *zap.Logger
}

// NewProcessor wires the processor's dependencies.
func NewProcessor(
	uow ports.UnitOfWork,
	repo ports.DeliveryRepository,
	reader ports.OrderReader,
	estimator ports.RouteEstimator,
	pub ports.Publisher,
	log *zap.Logger,
) *Processor {
	return &Processor{
		uow:       uow,
		repo:      repo,
		reader:    reader,
		estimator: estimator,
		pub:       pub,
		log:       log,
	}
}

// route is one resolved restaurant-to-customer pair.
type route struct {
	origin      string
	destination string
}

// Process runs the delivery algorithm for one order. A returned error means
// the message was dropped without side effects; under auto-ack there is no
// redelivery, so the error is terminal for this order's saga.
func (p *Processor) Process(ctx context.Context, orderID int64) error {
	log := p.log.With(zap.Int64("order_id", orderID))

	// at-least-once delivery: a duplicate trigger must not create a second
	// delivery or touch the read contract again
	var exists bool
	err := p.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		exists, err = p.repo.ExistsForOrder(txCtx, orderID)
		return err
	})
	if err != nil {
		return fmt.Errorf("check existing delivery: %w", err)
	}
	if exists {
		log.Info("delivery already exists, skipping")
		return nil
	}

	r, err := p.resolveRoute(ctx, orderID)
	if err != nil {
		return fmt.Errorf("resolve route: %w", err)
	}

	log.Info("route resolved",
		zap.String("restaurant", r.origin),
		zap.String("customer", r.destination))

	est := p.estimator.Estimate(ctx, r.origin, r.destination)
	log.Info("route estimated",
		zap.Float64("distance_km", est.DistanceKm),
		zap.String("duration", geo.FormatDuration(est.DurationSeconds)),
		zap.String("provenance", string(est.Provenance)))

	d := &deliveries.Delivery{
		OrderID:          orderID,
		Status:           deliveries.StatusPending,
		StartLocation:    r.origin,
		EndLocation:      r.destination,
		DistanceKm:       &est.DistanceKm,
		EstimatedSeconds: &est.DurationSeconds,
	}
	err = p.uow.WithinTx(ctx, func(txCtx context.Context) error {
		return p.repo.Create(txCtx, d)
	})
	if err != nil {
		return fmt.Errorf("create delivery: %w", err)
	}
	log.Info("delivery created", zap.Int64("delivery_id", d.ID))

	// the courier leaves immediately in this model
	err = p.uow.WithinTx(ctx, func(txCtx context.Context) error {
		return p.repo.UpdateStatus(txCtx, d.ID, deliveries.StatusOnTheWay)
	})
	if err != nil {
		return fmt.Errorf("advance delivery status: %w", err)
	}
	d.Status = deliveries.StatusOnTheWay
	log.Info("delivery on the way", zap.Int64("delivery_id", d.ID))

	msg := contracts.DeliveryStatusMessage{
		OrderID:    orderID,
		DeliveryID: d.ID,
		Status:     orders.StatusInProgress,
		DistanceKm: &est.DistanceKm,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode delivery status: %w", err)
	}
	if err := p.pub.Publish(rabbitmq.QueueDeliveryStatus, body, true); err != nil {
		return fmt.Errorf("publish delivery status: %w", err)
	}
	log.Info("delivery status published", zap.Int64("delivery_id", d.ID))

	return nil
}

// resolveRoute performs the three sequential reads: order, restaurant
// addresses, user addresses. The first address on each side wins. Any
// failure, including an empty address list, aborts the message.
func (p *Processor) resolveRoute(ctx context.Context, orderID int64) (route, error) {
	info, err := p.reader.Order(ctx, orderID)
	if err != nil {
		return route{}, err
	}

	restaurantAddrs, err := p.reader.RestaurantAddresses(ctx, info.RestaurantID)
	if err != nil {
		return route{}, err
	}
	if len(restaurantAddrs) == 0 {
		return route{}, fmt.Errorf("restaurant %d has no addresses", info.RestaurantID)
	}

	userAddrs, err := p.reader.UserAddresses(ctx, info.UserID)
	if err != nil {
		return route{}, err
	}
	if len(userAddrs) == 0 {
		return route{}, fmt.Errorf("user %d has no addresses", info.UserID)
	}

	return route{
		origin:      orderapi.FormatAddress(restaurantAddrs[0]),
		destination: orderapi.FormatAddress(userAddrs[0]),
	}, nil
}

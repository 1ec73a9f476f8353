package orderconsumer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"fooddelivery/internal/domain/orders"
	"fooddelivery/internal/ports"
	"fooddelivery/internal/shared/contracts"
)

// Service applies incoming payment and delivery status events to the order's
// status field. Handlers are stateless and swallow data problems locally so
// one poisoned message can never kill a consume loop.
type Service struct {
	uow  ports.UnitOfWork
	repo ports.OrderRepository
	log  *zap.Logger
}

// NewService constructs the order-side consumer service.
func NewService(uow ports.UnitOfWork, repo ports.OrderRepository, log *zap.Logger) *Service {
	return &Service{uow: uow, repo: repo, log: log}
}

// HandlePaymentStatus applies a payment-succeeded event: look the order up,
// drop the event if it is unknown, otherwise overwrite the status with the
// received value.
func (s *Service) HandlePaymentStatus(ctx context.Context, msg contracts.PaymentSucceededMessage) {
	log := s.log.With(zap.Int64("order_id", msg.OrderID), zap.String("status", msg.Status))

	if err := s.overwriteStatus(ctx, msg.OrderID, msg.Status); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			log.Warn("payment event for unknown order, dropping")
			return
		}
		log.Error("failed to apply payment status", zap.Error(err))
		return
	}

	log.Info("order marked from payment event")
}

// HandleDeliveryStatus applies a delivery status event the same way. The
// delivery status string goes into the order's status field verbatim, even
// though the two vocabularies differ.
func (s *Service) HandleDeliveryStatus(ctx context.Context, msg contracts.DeliveryStatusMessage) {
	log := s.log.With(
		zap.Int64("order_id", msg.OrderID),
		zap.Int64("delivery_id", msg.DeliveryID),
		zap.String("status", msg.Status))

	if err := s.overwriteStatus(ctx, msg.OrderID, msg.Status); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			log.Warn("delivery event for unknown order, dropping")
			return
		}
		log.Error("failed to apply delivery status", zap.Error(err))
		return
	}

	log.Info("order marked from delivery event")
}

// overwriteStatus looks the order up and writes the new status in one
// transaction. No transition validation: whatever arrived wins.
func (s *Service) overwriteStatus(ctx context.Context, orderID int64, status string) error {
	return s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetByID(txCtx, orderID); err != nil {
			return err
		}
		return s.repo.UpdateStatus(txCtx, orderID, status)
	})
}

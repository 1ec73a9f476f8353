package paymentworker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"fooddelivery/internal/domain/orders"
	"fooddelivery/internal/ports"
	"fooddelivery/internal/shared/contracts"
	"fooddelivery/internal/shared/rabbitmq"
)

// Sleeper simulates gateway latency (time.Sleep in prod, no-op in tests).
type Sleeper func(d time.Duration)

// Service processes payment requests. There is no failure path: holding the
// message for the configured delay stands in for the gateway round trip, and
// the charge always succeeds.
type Service struct {
	pub   ports.Publisher
	log   *zap.Logger
	delay time.Duration
	sleep Sleeper
}

// NewService constructs the payment service. A nil sleeper defaults to
// time.Sleep.
func NewService(pub ports.Publisher, log *zap.Logger, delay time.Duration, sleep Sleeper) *Service {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Service{pub: pub, log: log, delay: delay, sleep: sleep}
}

// Process handles one payment request end-to-end: simulate the charge, then
// fan out the success to the order-status queue and the delivery queue. The
// order-status publish happens first, so within one order's saga the paid
// event precedes the delivery trigger.
//
// Publish failures are logged and not retried; a lost event stalls that
// order's saga (operator-visible in the log only).
func (s *Service) Process(ctx context.Context, msg contracts.PaymentRequestMessage) {
	log := s.log.With(zap.Int64("order_id", msg.OrderID))
	log.Info("processing payment", zap.Float64("total_price", msg.TotalPrice))

	s.sleep(s.delay)
	log.Info("payment succeeded")

	s.publish(log, rabbitmq.QueuePaymentSucceeded, contracts.PaymentSucceededMessage{
		OrderID: msg.OrderID,
		Status:  orders.StatusPaid,
	}, false)

	s.publish(log, rabbitmq.QueueDeliveryTrigger, contracts.DeliveryTriggerMessage{
		OrderID: msg.OrderID,
	}, true)
}

func (s *Service) publish(log *zap.Logger, queue string, msg any, persistent bool) {
	body, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to encode event", zap.String("queue", queue), zap.Error(err))
		return
	}

	if err := s.pub.Publish(queue, body, persistent); err != nil {
		log.Error("failed to publish event", zap.String("queue", queue), zap.Error(err))
		return
	}

	log.Info("event published", zap.String("queue", queue))
}

package paymentworker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	service "fooddelivery/internal/app/paymentworker"
	"fooddelivery/internal/shared/config"
	"fooddelivery/internal/shared/contracts"
	"fooddelivery/internal/shared/logger"
	"fooddelivery/internal/shared/rabbitmq"
)

// Run starts the payment worker and blocks until ctx is cancelled.
// delayOverride, in seconds, replaces the configured gateway delay when
// non-negative.
func Run(ctx context.Context, delayOverride int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New("payment-worker", cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	delay := cfg.PaymentDelay
	if delayOverride >= 0 {
		delay = time.Duration(delayOverride) * time.Second
	}

	log.Info("service started", zap.Duration("payment_delay", delay))

	rabbitmq.Supervise(ctx, log, cfg.SupervisorRetry, func(ctx context.Context) error {
		return rabbitmq.RunConsumer(ctx, cfg.AMQPURL(), rabbitmq.QueuePaymentRequest, "payment-worker", log,
			func(c *rabbitmq.Client) rabbitmq.Handler {
				svc := service.NewService(c, log, delay, nil)
				return func(ctx context.Context, d amqp.Delivery) {
					handleDelivery(ctx, log, svc, d)
				}
			})
	})

	log.Info("shutdown complete")
	return nil
}

// handleDelivery decodes and processes one payment request. The message is
// already acknowledged, so every failure here is a drop.
func handleDelivery(ctx context.Context, log *zap.Logger, svc *service.Service, d amqp.Delivery) {
	msgLog := logger.WithRequestID(log)
	defer func() {
		if r := recover(); r != nil {
			msgLog.Error("panic while processing payment request", zap.Any("panic", r))
		}
	}()

	var msg contracts.PaymentRequestMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		msgLog.Error("failed to decode payment request, dropping", zap.Error(err))
		return
	}

	svc.Process(ctx, msg)
}

package orderconsumer

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	service "fooddelivery/internal/app/orderconsumer"
	"fooddelivery/internal/shared/config"
	"fooddelivery/internal/shared/contracts"
	"fooddelivery/internal/shared/logger"
	pg "fooddelivery/internal/shared/postgres"
	"fooddelivery/internal/shared/rabbitmq"
)

// Run starts both order-side consumers, one per queue, and blocks until ctx
// is cancelled. The two loops are independent: each has its own broker
// connection and its own supervisor.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New("order-consumer", cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	pool, err := pg.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize postgres pool", zap.Error(err))
		return err
	}
	defer pool.Close()

	svc := service.NewService(pg.NewUnitOfWork(pool), pg.NewOrdersRepo(), log)

	log.Info("service started")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		paymentLog := log.With(zap.String("loop", "payment"))
		rabbitmq.Supervise(gctx, paymentLog, cfg.SupervisorRetry, func(ctx context.Context) error {
			return rabbitmq.RunConsumer(ctx, cfg.AMQPURL(), rabbitmq.QueuePaymentSucceeded, "order-consumer-payment", paymentLog,
				func(*rabbitmq.Client) rabbitmq.Handler {
					return func(ctx context.Context, d amqp.Delivery) {
						handlePaymentDelivery(ctx, paymentLog, svc, d)
					}
				})
		})
		return nil
	})

	g.Go(func() error {
		deliveryLog := log.With(zap.String("loop", "delivery"))
		rabbitmq.Supervise(gctx, deliveryLog, cfg.SupervisorRetry, func(ctx context.Context) error {
			return rabbitmq.RunConsumer(ctx, cfg.AMQPURL(), rabbitmq.QueueDeliveryStatus, "order-consumer-delivery", deliveryLog,
				func(*rabbitmq.Client) rabbitmq.Handler {
					return func(ctx context.Context, d amqp.Delivery) {
						handleDeliveryStatus(ctx, deliveryLog, svc, d)
					}
				})
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("shutdown complete")
	return nil
}

func handlePaymentDelivery(ctx context.Context, log *zap.Logger, svc *service.Service, d amqp.Delivery) {
	msgLog := logger.WithRequestID(log)
	defer func() {
		if r := recover(); r != nil {
			msgLog.Error("panic while applying payment event", zap.Any("panic", r))
		}
	}()

	var msg contracts.PaymentSucceededMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		msgLog.Error("failed to decode payment event, dropping", zap.Error(err))
		return
	}

	svc.HandlePaymentStatus(ctx, msg)
}

func handleDeliveryStatus(ctx context.Context, log *zap.Logger, svc *service.Service, d amqp.Delivery) {
	msgLog := logger.WithRequestID(log)
	defer func() {
		if r := recover(); r != nil {
			msgLog.Error("panic while applying delivery event", zap.Any("panic", r))
		}
	}()

	var msg contracts.DeliveryStatusMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		msgLog.Error("failed to decode delivery event, dropping", zap.Error(err))
		return
	}

	svc.HandleDeliveryStatus(ctx, msg)
}

package deliveryworker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	service "fooddelivery/internal/app/deliveryworker"
	"fooddelivery/internal/geo"
	"fooddelivery/internal/orderapi"
	"fooddelivery/internal/shared/config"
	"fooddelivery/internal/shared/contracts"
	"fooddelivery/internal/shared/logger"
	pg "fooddelivery/internal/shared/postgres"
	"fooddelivery/internal/shared/rabbitmq"
)

// Run starts the delivery worker and blocks until ctx is cancelled. The
// worker owns the deliveries schema, so migrations run here before anything
// consumes.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New("delivery-worker", cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if err := pg.Migrate(cfg); err != nil {
		log.Error("failed to migrate database", zap.Error(err))
		return err
	}

	pool, err := pg.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize postgres pool", zap.Error(err))
		return err
	}
	defer pool.Close()

	uow := pg.NewUnitOfWork(pool)
	repo := pg.NewDeliveriesRepo()
	reader := orderapi.NewClient(cfg.OrderService.BaseURL, cfg.HTTPTimeout)
	estimator := geo.NewEstimator(cfg.Maps.BaseURL, cfg.Maps.APIKey, cfg.HTTPTimeout, log)

	log.Info("service started",
		zap.String("order_service", cfg.OrderService.BaseURL),
		zap.Bool("maps_provider_configured", cfg.Maps.APIKey != ""))

	rabbitmq.Supervise(ctx, log, cfg.SupervisorRetry, func(ctx context.Context) error {
		return rabbitmq.RunConsumer(ctx, cfg.AMQPURL(), rabbitmq.QueueDeliveryTrigger, "delivery-worker", log,
			func(c *rabbitmq.Client) rabbitmq.Handler {
				proc := service.NewProcessor(uow, repo, reader, estimator, c, log)
				return func(ctx context.Context, d amqp.Delivery) {
					handleDelivery(ctx, log, proc, d)
				}
			})
	})

	log.Info("shutdown complete")
	return nil
}

// handleDelivery decodes and processes one delivery trigger. Failures are
// terminal for the message: it was acknowledged on delivery and is never
// requeued.
func handleDelivery(ctx context.Context, log *zap.Logger, proc *service.Processor, d amqp.Delivery) {
	msgLog := logger.WithRequestID(log)
	defer func() {
		if r := recover(); r != nil {
			msgLog.Error("panic while processing delivery trigger", zap.Any("panic", r))
		}
	}()

	var msg contracts.DeliveryTriggerMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		msgLog.Error("failed to decode delivery trigger, dropping", zap.Error(err))
		return
	}

	if err := proc.Process(ctx, msg.OrderID); err != nil {
		msgLog.Error("delivery processing failed, message lost",
			zap.Int64("order_id", msg.OrderID),
			zap.Error(err))
	}
}

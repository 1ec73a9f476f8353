package rabbitmq

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Handler processes one delivery. Messages are acknowledged by the broker at
// delivery time (auto-ack), so a handler fault means the message is gone;
// handlers log and drop instead of propagating.
type Handler func(ctx context.Context, d amqp.Delivery)

// RunConsumer dials the broker, opens a consumer channel and feeds each
// delivery from queue to the handler produced by bind. bind receives the
// connected Client so handlers can publish over the same connection.
//
// Processing is a single-threaded, synchronous loop: one message is handled
// fully before the next is read. Returns nil when ctx is cancelled, an error
// on any connection-level failure (the supervisor redials from scratch).
func RunConsumer(ctx context.Context, url, queue, tag string, log *zap.Logger, bind func(c *Client) Handler) error {
	c, err := Dial(url, log)
	if err != nil {
		return err
	}
	defer c.Close()

	ch, err := c.NewConsumerChannel()
	if err != nil {
		return err
	}
	defer ch.Close()

	deliveries, err := ch.Consume(queue, tag,
		true,  // auto-ack: acknowledged before processing
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil)
	if err != nil {
		return err
	}

	handle := bind(c)
	log.Info("consuming", zap.String("queue", queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq: deliveries channel closed")
			}
			handle(ctx, d)
		}
	}
}

package rabbitmq

import (
	"context"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Queue names shared by all services. Routing goes through the default
// exchange, so the routing key is the queue name.
const (
	QueuePaymentRequest   = "payment_queue"
	QueuePaymentSucceeded = "payment_success"
	QueueDeliveryTrigger  = "delivery_queue"
	QueueDeliveryStatus   = "delivery_status"
)

// Client owns one AMQP connection plus a dedicated publish channel. Workers
// dial a fresh Client per supervised run and close it on the way out;
// reconnecting is the supervisor's job, not the client's.
type Client struct {
	log *zap.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	pubChan *amqp.Channel
}

// Dial connects to the broker, opens the publish channel and declares the
// queue topology idempotently.
func Dial(url string, log *zap.Logger) (*Client, error) {
	start := time.Now()

	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("connected to rabbitmq",
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))

	return &Client{log: log, conn: conn, pubChan: ch}, nil
}

// NewConsumerChannel opens a fresh channel for a consume loop. The caller
// owns it and must close it on every exit path.
func (c *Client) NewConsumerChannel() (*amqp.Channel, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return nil, errors.New("rabbitmq: connection is not open")
	}

	return conn.Channel()
}

// Publish sends a JSON body to a queue via the default exchange. Persistent
// messages survive a broker restart once they reach a durable queue.
func (c *Client) Publish(queue string, body []byte, persistent bool) error {
	c.mu.RLock()
	conn := c.conn
	ch := c.pubChan
	c.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return errors.New("rabbitmq: connection is not open")
	}
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbitmq: publish channel is not open")
	}

	mode := amqp.Transient
	if persistent {
		mode = amqp.Persistent
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(ctx,
		"", queue, false, false,
		amqp.Publishing{
			DeliveryMode: mode,
			ContentType:  "application/json",
			Body:         body,
		})
}

// Close releases the publish channel and the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pubChan != nil {
		_ = c.pubChan.Close()
		c.pubChan = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// declareTopology declares the saga's queues. delivery_queue and
// delivery_status are durable; the payment queues are not, matching the
// producer side.
func declareTopology(ch *amqp.Channel) error {
	transientQueues := []string{QueuePaymentRequest, QueuePaymentSucceeded}
	for _, q := range transientQueues {
		if _, err := ch.QueueDeclare(q, false, false, false, false, nil); err != nil {
			return err
		}
	}

	durableQueues := []string{QueueDeliveryTrigger, QueueDeliveryStatus}
	for _, q := range durableQueues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return err
		}
	}

	return nil
}

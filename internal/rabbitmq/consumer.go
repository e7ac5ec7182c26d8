package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"pier/config"
)

// ErrDiscard marks a message that can never be handled. Handlers wrap it so
// the consumer rejects the delivery instead of requeueing it.
var ErrDiscard = errors.New("discard message")

// Handler processes one delivery body.
type Handler func(ctx context.Context, body []byte) error

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  config.RabbitMQConfig
	logger  *zap.Logger
}

func NewConsumer(cfg config.RabbitMQConfig, logger *zap.Logger) (*Consumer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, channel, err := dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	if err := channel.Qos(cfg.PrefetchCount, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: channel,
		config:  cfg,
		logger:  logger,
	}, nil
}

func dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return conn, channel, nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

// ConsumeQueue delivers messages from queueName to handler until ctx is
// cancelled or the channel closes. Each delivery is acked on success,
// rejected when the error wraps ErrDiscard and requeued otherwise.
func (c *Consumer) ConsumeQueue(ctx context.Context, queueName string, handler Handler) error {
	if err := declareQueue(c.channel, queueName); err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("consuming queue", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queueName)
			}
			c.dispatch(ctx, msg, handler)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg amqp.Delivery, handler Handler) {
	log := c.logger.With(
		zap.String("queue", msg.RoutingKey),
		zap.String("message_id", msg.MessageId),
	)

	err := handler(ctx, msg.Body)
	switch {
	case err == nil:
		if ackErr := msg.Ack(false); ackErr != nil {
			log.Warn("ack failed", zap.Error(ackErr))
		}
	case errors.Is(err, ErrDiscard):
		log.Error("discarding message", zap.Error(err))
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.Warn("nack failed", zap.Error(nackErr))
		}
	default:
		log.Warn("requeueing message", zap.Error(err))
		if nackErr := msg.Nack(false, true); nackErr != nil {
			log.Warn("nack failed", zap.Error(nackErr))
		}
	}
}

type queueDeclarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

// declareQueue is idempotent.
func declareQueue(ch queueDeclarer, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

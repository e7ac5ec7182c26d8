package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"pier/config"
	"pier/models"
)

type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends order events to the default exchange, routed by queue name.
type Publisher struct {
	conn    *amqp.Connection
	channel channelPublisher

	orderQueue     string
	orderItemQueue string

	mu      sync.Mutex
	marshal func(any) ([]byte, error)
	newID   func() string
	now     func() time.Time
}

// NewPublisher dials RabbitMQ and declares both event queues.
func NewPublisher(cfg config.RabbitMQConfig) (*Publisher, error) {
	conn, channel, err := dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	for _, queue := range []string{cfg.OrderQueue, cfg.OrderItemQueue} {
		if err := declareQueue(channel, queue); err != nil {
			channel.Close()
			conn.Close()
			return nil, err
		}
	}

	p := newPublisher(channel, cfg.OrderQueue, cfg.OrderItemQueue)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channelPublisher, orderQueue, orderItemQueue string) *Publisher {
	return &Publisher{
		channel:        ch,
		orderQueue:     orderQueue,
		orderItemQueue: orderItemQueue,
		marshal:        json.Marshal,
		newID:          uuid.NewString,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// PublishOrderCreated sends one order event followed by one event per item.
// It stops at the first failed publish.
func (p *Publisher) PublishOrderCreated(ctx context.Context, order models.Order) error {
	if p == nil || p.channel == nil {
		return errors.New("rabbitmq publisher: not initialised")
	}

	at := p.now()
	if err := p.publish(ctx, p.orderQueue, models.OrderEvent{
		Event:      models.EventCreated,
		OrderID:    order.OrderID,
		CustomerID: order.CustomerID,
		Source:     order.Source,
		ItemCount:  len(order.Items),
		OccurredAt: at,
	}); err != nil {
		return fmt.Errorf("publish order %d: %w", order.OrderID, err)
	}

	for _, item := range order.Items {
		if err := p.publish(ctx, p.orderItemQueue, models.OrderItemEvent{
			Event:       models.EventCreated,
			OrderItemID: item.OrderItemID,
			OrderID:     order.OrderID,
			OccurredAt:  at,
		}); err != nil {
			return fmt.Errorf("publish order item %d: %w", item.OrderItemID, err)
		}
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	body, err := p.marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    p.newID(),
		Timestamp:    p.now(),
		Body:         body,
	})
}

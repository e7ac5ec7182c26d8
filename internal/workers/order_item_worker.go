package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"pier/internal/rabbitmq"
	"pier/models"
)

// OrderItemWorker mirrors committed order items into order_item_facts.
type OrderItemWorker struct {
	syncer
	consumer  Consumer
	queueName string
}

func NewOrderItemWorker(consumer Consumer, loader OrderLoader, sink FactSink, queueName string, logger *zap.Logger) *OrderItemWorker {
	return &OrderItemWorker{
		syncer:    newSyncer(loader, sink, logger),
		consumer:  consumer,
		queueName: queueName,
	}
}

func (w *OrderItemWorker) Start(ctx context.Context) error {
	w.logger.Info("starting order item worker", zap.String("queue", w.queueName))
	return w.consumer.ConsumeQueue(ctx, w.queueName, w.handleMessage)
}

func (w *OrderItemWorker) handleMessage(ctx context.Context, body []byte) error {
	var evt models.OrderItemEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("failed to unmarshal order item event: %w", discard(err))
	}

	w.logger.Info("processing order item event",
		zap.String("event", evt.Event),
		zap.Int64("order_id", evt.OrderID),
		zap.Int64("order_item_id", evt.OrderItemID),
	)

	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	switch evt.Event {
	case models.EventCreated:
		return w.syncCreated(ctx, evt)
	default:
		return unknownEvent(evt.Event)
	}
}

func (w *OrderItemWorker) syncCreated(ctx context.Context, evt models.OrderItemEvent) error {
	order, err := w.loadOrder(ctx, evt.OrderID)
	if err != nil {
		return err
	}

	var item *models.OrderItem
	for i := range order.Items {
		if order.Items[i].OrderItemID == evt.OrderItemID {
			item = &order.Items[i]
			break
		}
	}
	if item == nil {
		return fmt.Errorf("order item %d is not part of order %d: %w", evt.OrderItemID, evt.OrderID, rabbitmq.ErrDiscard)
	}

	var shippingZip string
	if dest := item.DestCustomerAddressID; dest != nil {
		zips, err := w.zipCodes(ctx, *dest)
		if err != nil {
			return err
		}
		shippingZip = zips[*dest]
	}

	fact := buildOrderItemFact(order, *item, shippingZip, w.now())
	if err := w.sink.InsertOrderItemFacts(ctx, []models.OrderItemFact{fact}); err != nil {
		return fmt.Errorf("failed to insert order item fact: %w", err)
	}

	w.logger.Info("order item fact written",
		zap.Int64("order_item_id", fact.OrderItemID),
		zap.String("modality", fact.Modality),
		zap.Float64("revenue", fact.Revenue),
	)
	return nil
}

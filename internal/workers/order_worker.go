package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"pier/models"
)

// OrderWorker mirrors committed orders into order_facts.
type OrderWorker struct {
	syncer
	consumer  Consumer
	queueName string
}

func NewOrderWorker(consumer Consumer, loader OrderLoader, sink FactSink, queueName string, logger *zap.Logger) *OrderWorker {
	return &OrderWorker{
		syncer:    newSyncer(loader, sink, logger),
		consumer:  consumer,
		queueName: queueName,
	}
}

func (w *OrderWorker) Start(ctx context.Context) error {
	w.logger.Info("starting order worker", zap.String("queue", w.queueName))
	return w.consumer.ConsumeQueue(ctx, w.queueName, w.handleMessage)
}

func (w *OrderWorker) handleMessage(ctx context.Context, body []byte) error {
	var evt models.OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("failed to unmarshal order event: %w", discard(err))
	}

	w.logger.Info("processing order event",
		zap.String("event", evt.Event),
		zap.Int64("order_id", evt.OrderID),
	)

	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	switch evt.Event {
	case models.EventCreated:
		return w.syncCreated(ctx, evt.OrderID)
	default:
		return unknownEvent(evt.Event)
	}
}

func (w *OrderWorker) syncCreated(ctx context.Context, orderID int64) error {
	order, err := w.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	zips, err := w.zipCodes(ctx, order.BillingAddressID)
	if err != nil {
		return err
	}

	fact := buildOrderFact(order, zips[order.BillingAddressID], w.now())
	if err := w.sink.InsertOrderFact(ctx, fact); err != nil {
		return fmt.Errorf("failed to insert order fact: %w", err)
	}

	w.logger.Info("order fact written",
		zap.Int64("order_id", fact.OrderID),
		zap.Int32("item_count", fact.ItemCount),
		zap.Float64("total_revenue", fact.TotalRevenue),
	)
	return nil
}

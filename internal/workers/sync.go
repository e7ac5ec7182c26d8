package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pier/internal/rabbitmq"
	"pier/internal/repositories"
	"pier/models"
)

const (
	handleTimeout     = 30 * time.Second
	maxRetries        = 3
	initialRetryDelay = 100 * time.Millisecond
)

// Consumer feeds queue deliveries to a handler until ctx ends.
type Consumer interface {
	ConsumeQueue(ctx context.Context, queueName string, handler rabbitmq.Handler) error
}

// OrderLoader reads committed orders and the addresses they reference.
type OrderLoader interface {
	Orders() repositories.OrderRepository
	Addresses() repositories.AddressRepository
}

// FactSink appends analytics rows.
type FactSink interface {
	InsertOrderFact(ctx context.Context, fact models.OrderFact) error
	InsertOrderItemFacts(ctx context.Context, facts []models.OrderItemFact) error
}

// syncer holds what both workers share: where committed rows come from,
// where facts go, and how long to wait for a commit to become visible.
type syncer struct {
	loader     OrderLoader
	sink       FactSink
	logger     *zap.Logger
	retryDelay time.Duration
	now        func() time.Time
}

func newSyncer(loader OrderLoader, sink FactSink, logger *zap.Logger) syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return syncer{
		loader:     loader,
		sink:       sink,
		logger:     logger,
		retryDelay: initialRetryDelay,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// loadOrder retries with doubling delay so a consumer that outruns the
// publishing transaction still finds the row. An order that stays missing is
// discarded rather than requeued.
func (s syncer) loadOrder(ctx context.Context, orderID int64) (models.Order, error) {
	delay := s.retryDelay
	var err error
	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			if werr := wait(ctx, delay); werr != nil {
				return models.Order{}, werr
			}
			delay *= 2
		}

		var order models.Order
		order, err = s.loader.Orders().FindByID(ctx, orderID)
		if err == nil {
			return order, nil
		}

		s.logger.Debug("order not readable yet",
			zap.Int64("order_id", orderID),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
	}

	if repositories.IsNotFound(err) {
		return models.Order{}, fmt.Errorf("order %d not found after %d attempts: %w", orderID, maxRetries, rabbitmq.ErrDiscard)
	}
	return models.Order{}, fmt.Errorf("failed to query order %d after %d retries: %w", orderID, maxRetries, err)
}

// zipCodes maps the given address ids to their zip codes. Unknown ids are
// left out.
func (s syncer) zipCodes(ctx context.Context, ids ...int64) (map[int64]string, error) {
	addresses, err := s.loader.Addresses().FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	out := make(map[int64]string, len(addresses))
	for _, a := range addresses {
		out[a.CustomerAddressID] = a.ZipCode
	}
	return out, nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func unknownEvent(event string) error {
	return fmt.Errorf("unknown event type %q: %w", event, rabbitmq.ErrDiscard)
}

func discard(err error) error {
	return fmt.Errorf("%w: %w", rabbitmq.ErrDiscard, err)
}

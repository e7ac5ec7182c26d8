package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pier/internal/fulfillment"
	"pier/internal/intake"
	"pier/internal/repositories"
	"pier/internal/validation"
	"pier/models"
)

// OrderServiceDeps bundles collaborators required to construct an order service.
type OrderServiceDeps struct {
	Store repositories.Store
	// Publisher is optional. When set, committed orders are announced through it.
	Publisher OrderEventPublisher
	Logger    *zap.Logger
}

type orderService struct {
	store     repositories.Store
	validator *intake.Validator
	publisher OrderEventPublisher
	logger    *zap.Logger
}

var _ OrderService = (*orderService)(nil)

func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Store == nil {
		return nil, errors.New("order service: store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &orderService{
		store:     deps.Store,
		validator: intake.NewValidator(deps.Store.Customers(), deps.Store.Addresses()),
		publisher: deps.Publisher,
		logger:    logger.Named("orders"),
	}, nil
}

// CreateOrder validates and persists an order with its items in one unit of
// work. Nothing is written unless every check passes.
func (s *orderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (models.Order, error) {
	if err := validation.Struct(cmd); err != nil {
		return models.Order{}, fmt.Errorf("%w: %w", ErrOrderInvalidInput, err)
	}

	header, lines := toIntake(cmd)

	var order models.Order
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		validated, err := s.validator.Validate(ctx, header, lines)
		if err != nil {
			return err
		}
		if err := s.store.Orders().Insert(ctx, &validated); err != nil {
			return err
		}
		order = validated
		return nil
	})
	if err != nil {
		return models.Order{}, s.mapCreateError(err)
	}

	s.publish(ctx, order)
	return order, nil
}

func (s *orderService) mapCreateError(err error) error {
	switch {
	case errors.Is(err, intake.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrOrderReferenceNotFound, err)
	case errors.Is(err, intake.ErrRejected):
		return fmt.Errorf("%w: %w", ErrOrderRejected, err)
	case repositories.IsMissingReference(err):
		return fmt.Errorf("%w: %w", ErrOrderReferenceNotFound, err)
	default:
		return fmt.Errorf("create order: %w", err)
	}
}

// publishTimeout bounds event publication once the order has committed.
const publishTimeout = 5 * time.Second

// publish runs after commit, detached from the caller's cancellation so a
// client that hangs up does not cost the analytics copy. A failure is logged
// and the order stands.
func (s *orderService) publish(ctx context.Context, order models.Order) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Error("publish order created event failed",
			zap.Int64("order_id", order.OrderID),
			zap.Error(err),
		)
	}
}

func (s *orderService) GetOrder(ctx context.Context, orderID int64) (models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return order, nil
}

func toIntake(cmd CreateOrderCommand) (intake.Header, []intake.Line) {
	header := intake.Header{
		CustomerID:       cmd.Order.CustomerID,
		TimeOfOrder:      cmd.Order.TimeOfOrder,
		Source:           cmd.Order.Source,
		BillingAddressID: cmd.Order.BillingAddressID,
	}
	lines := make([]intake.Line, len(cmd.Items))
	for i, item := range cmd.Items {
		lines[i] = intake.Line{
			ItemID:       item.ItemID,
			Modality:     item.FulfillmentModality,
			Quantity:     item.Quantity,
			PricePerItem: item.PricePerItem,
			Routing: fulfillment.Fields{
				SourceWarehouseID:     item.SourceWarehouseID,
				SourceStoreID:         item.SourceStoreID,
				DestStoreID:           item.DestStoreID,
				DestCustomerAddressID: item.DestCustomerAddressID,
			},
		}
	}
	return header, lines
}

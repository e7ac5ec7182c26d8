package services

import (
	"context"
	"time"

	"pier/models"
)

// CustomerService manages customers and the addresses they own.
type CustomerService interface {
	CreateCustomer(ctx context.Context, cmd CreateCustomerCommand) (models.Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (models.Customer, error)
	AddAddress(ctx context.Context, cmd CreateAddressCommand) (models.CustomerAddress, error)
	GetAddress(ctx context.Context, addressID int64) (models.CustomerAddress, error)
	ListAddresses(ctx context.Context, customerID int64) ([]models.CustomerAddress, error)
}

// AssetService manages the identity-only entities referenced by order items.
type AssetService interface {
	CreateStore(ctx context.Context, cmd CreateAssetCommand) (models.Store, error)
	GetStore(ctx context.Context, storeID int64) (models.Store, error)
	CreateWarehouse(ctx context.Context, cmd CreateAssetCommand) (models.Warehouse, error)
	GetWarehouse(ctx context.Context, warehouseID int64) (models.Warehouse, error)
	CreateItem(ctx context.Context, cmd CreateItemCommand) (models.Item, error)
	GetItem(ctx context.Context, itemID int64) (models.Item, error)
}

// OrderService accepts orders through the intake checks and reads them back.
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (models.Order, error)
	GetOrder(ctx context.Context, orderID int64) (models.Order, error)
}

// ReportService answers the read-only aggregate queries.
type ReportService interface {
	OrderHistory(ctx context.Context, query OrderHistoryQuery) (OrderHistory, error)
	BillingZipCounts(ctx context.Context) ([]models.ZipCount, error)
	ShippingZipCounts(ctx context.Context) ([]models.ZipCount, error)
	InstoreShoppers(ctx context.Context, topK int) ([]models.CustomerOrderCount, error)
}

// OrderEventPublisher announces committed orders to downstream consumers.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order models.Order) error
}

type CreateCustomerCommand struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName string  `json:"first_name" validate:"notblank"`
	LastName  string  `json:"last_name" validate:"notblank"`
	Phone     *string `json:"phone" validate:"omitempty,usphone"`
}

type CreateAddressCommand struct {
	CustomerID   int64   `json:"-"`
	AddressLine1 string  `json:"address_line_1" validate:"notblank"`
	AddressLine2 *string `json:"address_line_2"`
	City         string  `json:"city" validate:"notblank"`
	State        string  `json:"state" validate:"usstate"`
	ZipCode      string  `json:"zip_code" validate:"zip5"`
	IsBilling    bool    `json:"is_billing"`
	IsShipping   bool    `json:"is_shipping"`
}

type CreateAssetCommand struct {
	Name string `json:"name" validate:"max=255"`
}

type CreateItemCommand struct {
	Name        string `json:"name" validate:"max=255"`
	Description string `json:"description"`
}

// CreateOrderCommand carries a proposed order header and its items.
type CreateOrderCommand struct {
	Order OrderHeaderInput `json:"order"`
	Items []OrderItemInput `json:"items" validate:"min=1,dive"`
}

type OrderHeaderInput struct {
	CustomerID       int64              `json:"customer_id" validate:"gt=0"`
	TimeOfOrder      time.Time          `json:"time_of_order" validate:"required"`
	Source           models.OrderSource `json:"source" validate:"oneof=store online"`
	BillingAddressID int64              `json:"billing_address_id" validate:"gt=0"`
}

type OrderItemInput struct {
	ItemID                int64                      `json:"item_id" validate:"gt=0"`
	FulfillmentModality   models.FulfillmentModality `json:"fulfillment_modality" validate:"required"`
	Quantity              int                        `json:"quantity" validate:"gt=0"`
	PricePerItem          float64                    `json:"price_per_item" validate:"gte=0"`
	SourceWarehouseID     *int64                     `json:"source_warehouse_id"`
	SourceStoreID         *int64                     `json:"source_store_id"`
	DestStoreID           *int64                     `json:"dest_store_id"`
	DestCustomerAddressID *int64                     `json:"dest_customer_address_id"`
}

// OrderHistoryQuery identifies a customer by exactly one of Email or Phone.
type OrderHistoryQuery struct {
	Email string
	Phone string
}

type OrderHistory struct {
	Customer models.Customer
	Orders   []models.Order
}

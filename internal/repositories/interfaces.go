package repositories

import (
	"context"

	"pier/models"
)

// Store exposes typed repository accessors over one backing database.
type Store interface {
	UnitOfWork

	Customers() CustomerRepository
	Addresses() AddressRepository
	Stores() AssetRepository[models.Store]
	Warehouses() AssetRepository[models.Warehouse]
	Items() AssetRepository[models.Item]
	Orders() OrderRepository
	Reports() ReportRepository

	Ping(ctx context.Context) error
}

// UnitOfWork groups repository calls into one transaction. Repositories
// called with the context passed to fn take part in that transaction; the
// transaction commits only when fn returns nil.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type CustomerRepository interface {
	Insert(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, customerID int64) (models.Customer, error)
	FindByEmail(ctx context.Context, email string) (models.Customer, error)
	FindByPhone(ctx context.Context, phone string) (models.Customer, error)
}

type AddressRepository interface {
	Insert(ctx context.Context, address *models.CustomerAddress) error
	FindByID(ctx context.Context, addressID int64) (models.CustomerAddress, error)
	// FindByIDs returns the addresses that exist among ids in one lookup.
	// Missing ids are omitted rather than reported as errors.
	FindByIDs(ctx context.Context, ids []int64) ([]models.CustomerAddress, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.CustomerAddress, error)
}

// AssetRepository persists the identity-only entities: stores, warehouses and items.
type AssetRepository[T any] interface {
	Insert(ctx context.Context, asset *T) error
	FindByID(ctx context.Context, id int64) (T, error)
}

type OrderRepository interface {
	// Insert writes the order and its items, assigning identifiers to both.
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, orderID int64) (models.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error)
}

// ReportRepository runs grouped aggregations over committed orders. Results
// are ordered by descending count.
type ReportRepository interface {
	CountOrdersByBillingZip(ctx context.Context) ([]models.ZipCount, error)
	CountOrdersByShippingZip(ctx context.Context, modalities []models.FulfillmentModality) ([]models.ZipCount, error)
	TopCustomersBySource(ctx context.Context, source models.OrderSource, limit int) ([]models.CustomerOrderCount, error)
}

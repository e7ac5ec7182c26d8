package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pier/internal/repositories"
	"pier/models"
)

// Store implements repositories.Store on top of a Client.
type Store struct {
	*Client
}

func NewStore(c *Client) *Store {
	return &Store{Client: c}
}

var _ repositories.Store = (*Store)(nil)

func (s *Store) Customers() repositories.CustomerRepository { return customerRepository{s.Client} }
func (s *Store) Addresses() repositories.AddressRepository  { return addressRepository{s.Client} }
func (s *Store) Orders() repositories.OrderRepository       { return orderRepository{s.Client} }
func (s *Store) Reports() repositories.ReportRepository     { return reportRepository{s.Client} }

func (s *Store) Stores() repositories.AssetRepository[models.Store] {
	return assetRepository[models.Store]{c: s.Client, op: "stores"}
}

func (s *Store) Warehouses() repositories.AssetRepository[models.Warehouse] {
	return assetRepository[models.Warehouse]{c: s.Client, op: "warehouses"}
}

func (s *Store) Items() repositories.AssetRepository[models.Item] {
	return assetRepository[models.Item]{c: s.Client, op: "items"}
}

type customerRepository struct{ c *Client }

func (r customerRepository) Insert(ctx context.Context, customer *models.Customer) error {
	return wrapError("customers.insert", r.c.conn(ctx).Omit(clause.Associations).Create(customer).Error)
}

func (r customerRepository) FindByID(ctx context.Context, customerID int64) (models.Customer, error) {
	return r.first(ctx, "customers.find_by_id", "customer_id = ?", customerID)
}

func (r customerRepository) FindByEmail(ctx context.Context, email string) (models.Customer, error) {
	return r.first(ctx, "customers.find_by_email", "email = ?", email)
}

func (r customerRepository) FindByPhone(ctx context.Context, phone string) (models.Customer, error) {
	return r.first(ctx, "customers.find_by_phone", "phone = ?", phone)
}

func (r customerRepository) first(ctx context.Context, op, query string, arg any) (models.Customer, error) {
	var customer models.Customer
	if err := r.c.conn(ctx).Where(query, arg).First(&customer).Error; err != nil {
		return models.Customer{}, wrapError(op, err)
	}
	return customer, nil
}

type addressRepository struct{ c *Client }

func (r addressRepository) Insert(ctx context.Context, address *models.CustomerAddress) error {
	return wrapError("addresses.insert", r.c.conn(ctx).Create(address).Error)
}

func (r addressRepository) FindByID(ctx context.Context, addressID int64) (models.CustomerAddress, error) {
	var address models.CustomerAddress
	if err := r.c.conn(ctx).Where("customer_address_id = ?", addressID).First(&address).Error; err != nil {
		return models.CustomerAddress{}, wrapError("addresses.find_by_id", err)
	}
	return address, nil
}

func (r addressRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.CustomerAddress, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var addresses []models.CustomerAddress
	err := r.c.conn(ctx).
		Where("customer_address_id IN ?", ids).
		Order("customer_address_id").
		Find(&addresses).Error
	if err != nil {
		return nil, wrapError("addresses.find_by_ids", err)
	}
	return addresses, nil
}

func (r addressRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.CustomerAddress, error) {
	var addresses []models.CustomerAddress
	err := r.c.conn(ctx).
		Where("customer_id = ?", customerID).
		Order("customer_address_id").
		Find(&addresses).Error
	if err != nil {
		return nil, wrapError("addresses.list_by_customer", err)
	}
	return addresses, nil
}

type assetRepository[T any] struct {
	c  *Client
	op string
}

func (r assetRepository[T]) Insert(ctx context.Context, asset *T) error {
	return wrapError(r.op+".insert", r.c.conn(ctx).Create(asset).Error)
}

func (r assetRepository[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var asset T
	if err := r.c.conn(ctx).First(&asset, id).Error; err != nil {
		var zero T
		return zero, wrapError(r.op+".find_by_id", err)
	}
	return asset, nil
}

type orderRepository struct{ c *Client }

// Insert creates the order row and then its item rows in the caller's
// transaction. Only the Items association is written; referenced rows must
// already exist.
func (r orderRepository) Insert(ctx context.Context, order *models.Order) error {
	err := r.c.conn(ctx).
		Omit("Customer", "BillingAddress").
		Create(order).Error
	return wrapError("orders.insert", err)
}

func (r orderRepository) FindByID(ctx context.Context, orderID int64) (models.Order, error) {
	var order models.Order
	err := r.c.conn(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_item_id") }).
		Where("order_id = ?", orderID).
		First(&order).Error
	if err != nil {
		return models.Order{}, wrapError("orders.find_by_id", err)
	}
	return order, nil
}

func (r orderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := r.c.conn(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_item_id") }).
		Where("customer_id = ?", customerID).
		Order("time_of_order, order_id").
		Find(&orders).Error
	if err != nil {
		return nil, wrapError("orders.list_by_customer", err)
	}
	return orders, nil
}

type reportRepository struct{ c *Client }

func (r reportRepository) CountOrdersByBillingZip(ctx context.Context) ([]models.ZipCount, error) {
	var rows []models.ZipCount
	err := r.c.conn(ctx).
		Table("customer_addresses AS a").
		Select("a.zip_code AS zip_code, COUNT(*) AS order_count").
		Joins("JOIN orders AS o ON o.billing_address_id = a.customer_address_id").
		Group("a.zip_code").
		Order("order_count DESC, a.zip_code").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapError("reports.count_by_billing_zip", err)
	}
	return rows, nil
}

func (r reportRepository) CountOrdersByShippingZip(ctx context.Context, modalities []models.FulfillmentModality) ([]models.ZipCount, error) {
	names := make([]string, len(modalities))
	for i, m := range modalities {
		names[i] = string(m)
	}
	var rows []models.ZipCount
	err := r.c.conn(ctx).
		Table("customer_addresses AS a").
		Select("a.zip_code AS zip_code, COUNT(DISTINCT oi.order_id) AS order_count").
		Joins("JOIN order_items AS oi ON oi.dest_customer_address_id = a.customer_address_id").
		Where("oi.fulfillment_modality IN ?", names).
		Group("a.zip_code").
		Order("order_count DESC, a.zip_code").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapError("reports.count_by_shipping_zip", err)
	}
	return rows, nil
}

func (r reportRepository) TopCustomersBySource(ctx context.Context, source models.OrderSource, limit int) ([]models.CustomerOrderCount, error) {
	var rows []models.CustomerOrderCount
	err := r.c.conn(ctx).
		Model(&models.Order{}).
		Select("customer_id, COUNT(*) AS order_count").
		Where("source = ?", string(source)).
		Group("customer_id").
		Order("order_count DESC, customer_id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, wrapError("reports.top_customers_by_source", err)
	}
	return rows, nil
}

package models

import "time"

type Customer struct {
	CustomerID int64   `gorm:"column:customer_id;primaryKey"`
	Email      string  `gorm:"column:email;type:varchar(320);not null;uniqueIndex"`
	FirstName  string  `gorm:"column:first_name;type:varchar(255);not null"`
	LastName   string  `gorm:"column:last_name;type:varchar(255);not null"`
	Phone      *string `gorm:"column:phone;type:varchar(12);uniqueIndex"`

	Addresses []CustomerAddress `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerAddress is owned by exactly one customer. The billing and shipping
// flags are fixed at creation; at least one of them is set.
type CustomerAddress struct {
	CustomerAddressID int64   `gorm:"column:customer_address_id;primaryKey"`
	CustomerID        int64   `gorm:"column:customer_id;not null;index"`
	AddressLine1      string  `gorm:"column:address_line_1;type:varchar(255);not null"`
	AddressLine2      *string `gorm:"column:address_line_2;type:varchar(255)"`
	City              string  `gorm:"column:city;type:varchar(100);not null"`
	State             string  `gorm:"column:state;type:char(2);not null"`
	ZipCode           string  `gorm:"column:zip_code;type:char(5);not null;index"`
	IsBilling         bool    `gorm:"column:is_billing;not null;default:false"`
	IsShipping        bool    `gorm:"column:is_shipping;not null;default:false"`
}

func (CustomerAddress) TableName() string {
	return "customer_addresses"
}

type Store struct {
	StoreID int64  `gorm:"column:store_id;primaryKey"`
	Name    string `gorm:"column:name;type:varchar(255)"`
}

func (Store) TableName() string {
	return "stores"
}

type Warehouse struct {
	WarehouseID int64  `gorm:"column:warehouse_id;primaryKey"`
	Name        string `gorm:"column:name;type:varchar(255)"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}

type Item struct {
	ItemID      int64  `gorm:"column:item_id;primaryKey"`
	Name        string `gorm:"column:name;type:varchar(255)"`
	Description string `gorm:"column:description;type:text"`
}

func (Item) TableName() string {
	return "items"
}

// Order is persisted together with its Items in a single transaction.
type Order struct {
	OrderID          int64       `gorm:"column:order_id;primaryKey"`
	CustomerID       int64       `gorm:"column:customer_id;not null;index"`
	TimeOfOrder      time.Time   `gorm:"column:time_of_order;not null;index"`
	Source           OrderSource `gorm:"column:source;type:varchar(16);not null;index"`
	BillingAddressID int64       `gorm:"column:billing_address_id;not null;index"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	Customer       *Customer        `gorm:"foreignKey:CustomerID"`
	BillingAddress *CustomerAddress `gorm:"foreignKey:BillingAddressID"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem carries the routing fields selected by its fulfillment modality.
// Fields outside the modality's set are always nil.
type OrderItem struct {
	OrderItemID           int64               `gorm:"column:order_item_id;primaryKey"`
	OrderID               int64               `gorm:"column:order_id;not null;index"`
	ItemID                int64               `gorm:"column:item_id;not null;index"`
	FulfillmentModality   FulfillmentModality `gorm:"column:fulfillment_modality;type:varchar(32);not null"`
	Quantity              int                 `gorm:"column:quantity;not null"`
	PricePerItem          float64             `gorm:"column:price_per_item;not null"`
	SourceWarehouseID     *int64              `gorm:"column:source_warehouse_id"`
	SourceStoreID         *int64              `gorm:"column:source_store_id"`
	DestStoreID           *int64              `gorm:"column:dest_store_id"`
	DestCustomerAddressID *int64              `gorm:"column:dest_customer_address_id;index"`

	Item                *Item            `gorm:"foreignKey:ItemID"`
	SourceWarehouse     *Warehouse       `gorm:"foreignKey:SourceWarehouseID"`
	SourceStore         *Store           `gorm:"foreignKey:SourceStoreID"`
	DestStore           *Store           `gorm:"foreignKey:DestStoreID"`
	DestCustomerAddress *CustomerAddress `gorm:"foreignKey:DestCustomerAddressID"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Total returns quantity multiplied by unit price.
func (i OrderItem) Total() float64 {
	return float64(i.Quantity) * i.PricePerItem
}

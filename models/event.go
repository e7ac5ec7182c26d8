package models

import "time"

const (
	EventCreated = "created"
)

// OrderEvent is the message payload published to RabbitMQ once an order commits.
type OrderEvent struct {
	Event      string      `json:"event"`       // created
	OrderID    int64       `json:"order_id"`    // ID in Postgres
	CustomerID int64       `json:"customer_id"` // ordering customer
	Source     OrderSource `json:"source"`      // store | online
	ItemCount  int         `json:"item_count"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// OrderItemEvent is published once per order item of a committed order.
type OrderItemEvent struct {
	Event       string    `json:"event"`         // created
	OrderItemID int64     `json:"order_item_id"` // ID in Postgres
	OrderID     int64     `json:"order_id"`      // ID in Postgres
	OccurredAt  time.Time `json:"occurred_at"`
}

// OrderFact is the row appended to the ClickHouse order fact table.
type OrderFact struct {
	OrderID        int64
	CustomerID     int64
	DateKey        string
	Source         string
	BillingZipCode string
	ItemCount      int32
	TotalQuantity  int64
	TotalRevenue   float64
	EventType      string
	EventTime      time.Time
}

// OrderItemFact is the row appended to the ClickHouse order item fact table.
type OrderItemFact struct {
	OrderItemID       int64
	OrderID           int64
	ItemID            int64
	DateKey           string
	Modality          string
	SourceWarehouseID int64
	SourceStoreID     int64
	DestStoreID       int64
	ShippingZipCode   string
	Quantity          int64
	Revenue           float64
	EventType         string
	EventTime         time.Time
}

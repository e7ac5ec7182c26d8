package workers

import (
	"time"

	"pier/models"
)

const (
	dateKeyLayout   = "02012006" // ddMMYYYY
	eventTypeCreate = "create"
)

func dateKey(t time.Time) string {
	return t.UTC().Format(dateKeyLayout)
}

func buildOrderFact(order models.Order, billingZip string, at time.Time) models.OrderFact {
	fact := models.OrderFact{
		OrderID:        order.OrderID,
		CustomerID:     order.CustomerID,
		DateKey:        dateKey(order.TimeOfOrder),
		Source:         string(order.Source),
		BillingZipCode: billingZip,
		ItemCount:      int32(len(order.Items)),
		EventType:      eventTypeCreate,
		EventTime:      at,
	}
	for _, item := range order.Items {
		fact.TotalQuantity += int64(item.Quantity)
		fact.TotalRevenue += item.Total()
	}
	return fact
}

func buildOrderItemFact(order models.Order, item models.OrderItem, shippingZip string, at time.Time) models.OrderItemFact {
	return models.OrderItemFact{
		OrderItemID:       item.OrderItemID,
		OrderID:           order.OrderID,
		ItemID:            item.ItemID,
		DateKey:           dateKey(order.TimeOfOrder),
		Modality:          string(item.FulfillmentModality),
		SourceWarehouseID: deref(item.SourceWarehouseID),
		SourceStoreID:     deref(item.SourceStoreID),
		DestStoreID:       deref(item.DestStoreID),
		ShippingZipCode:   shippingZip,
		Quantity:          int64(item.Quantity),
		Revenue:           item.Total(),
		EventType:         eventTypeCreate,
		EventTime:         at,
	}
}

// deref maps an absent routing id to 0, the fact tables' "none" key.
func deref(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

package handlers

import (
	"time"

	"pier/internal/fulfillment"
	"pier/models"
)

type customerPayload struct {
	CustomerID int64   `json:"customer_id"`
	Email      string  `json:"email"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Phone      *string `json:"phone"`
}

type addressPayload struct {
	CustomerAddressID int64   `json:"customer_address_id"`
	CustomerID        int64   `json:"customer_id"`
	AddressLine1      string  `json:"address_line_1"`
	AddressLine2      *string `json:"address_line_2"`
	City              string  `json:"city"`
	State             string  `json:"state"`
	ZipCode           string  `json:"zip_code"`
	IsBilling         bool    `json:"is_billing"`
	IsShipping        bool    `json:"is_shipping"`
}

type storePayload struct {
	StoreID int64  `json:"store_id"`
	Name    string `json:"name"`
}

type warehousePayload struct {
	WarehouseID int64  `json:"warehouse_id"`
	Name        string `json:"name"`
}

type itemPayload struct {
	ItemID      int64  `json:"item_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type orderPayload struct {
	OrderID          int64              `json:"order_id"`
	CustomerID       int64              `json:"customer_id"`
	TimeOfOrder      string             `json:"time_of_order"`
	Source           string             `json:"source"`
	BillingAddressID int64              `json:"billing_address_id"`
	Items            []orderItemPayload `json:"items"`
}

type orderItemPayload struct {
	OrderItemID           int64   `json:"order_item_id"`
	OrderID               int64   `json:"order_id"`
	ItemID                int64   `json:"item_id"`
	FulfillmentModality   string  `json:"fulfillment_modality"`
	Quantity              int     `json:"quantity"`
	PricePerItem          float64 `json:"price_per_item"`
	SourceWarehouseID     *int64  `json:"source_warehouse_id"`
	SourceStoreID         *int64  `json:"source_store_id"`
	DestStoreID           *int64  `json:"dest_store_id"`
	DestCustomerAddressID *int64  `json:"dest_customer_address_id"`
}

type zipCountPayload struct {
	ZipCode    string `json:"zip_code"`
	OrderCount int64  `json:"order_count"`
}

type shopperPayload struct {
	CustomerID int64 `json:"customer_id"`
	OrderCount int64 `json:"order_count"`
}

func buildCustomerPayload(c models.Customer) customerPayload {
	return customerPayload{
		CustomerID: c.CustomerID,
		Email:      c.Email,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Phone:      c.Phone,
	}
}

func buildAddressPayload(a models.CustomerAddress) addressPayload {
	return addressPayload{
		CustomerAddressID: a.CustomerAddressID,
		CustomerID:        a.CustomerID,
		AddressLine1:      a.AddressLine1,
		AddressLine2:      a.AddressLine2,
		City:              a.City,
		State:             a.State,
		ZipCode:           a.ZipCode,
		IsBilling:         a.IsBilling,
		IsShipping:        a.IsShipping,
	}
}

func buildOrderPayload(o models.Order) orderPayload {
	items := make([]orderItemPayload, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemPayload{
			OrderItemID:           item.OrderItemID,
			OrderID:               item.OrderID,
			ItemID:                item.ItemID,
			FulfillmentModality:   string(item.FulfillmentModality),
			Quantity:              item.Quantity,
			PricePerItem:          item.PricePerItem,
			SourceWarehouseID:     item.SourceWarehouseID,
			SourceStoreID:         item.SourceStoreID,
			DestStoreID:           item.DestStoreID,
			DestCustomerAddressID: item.DestCustomerAddressID,
		})
	}
	return orderPayload{
		OrderID:          o.OrderID,
		CustomerID:       o.CustomerID,
		TimeOfOrder:      o.TimeOfOrder.UTC().Format(time.RFC3339),
		Source:           string(o.Source),
		BillingAddressID: o.BillingAddressID,
		Items:            items,
	}
}

func buildZipCountPayloads(counts []models.ZipCount) []zipCountPayload {
	out := make([]zipCountPayload, len(counts))
	for i, c := range counts {
		out[i] = zipCountPayload{ZipCode: c.ZipCode, OrderCount: c.OrderCount}
	}
	return out
}

func fieldNames(fields []fulfillment.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}

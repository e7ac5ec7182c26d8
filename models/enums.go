package models

import (
	"database/sql/driver"
	"fmt"
)

// OrderSource is the channel an order was placed through.
type OrderSource string

const (
	OrderSourceStore  OrderSource = "store"
	OrderSourceOnline OrderSource = "online"
)

// Valid reports whether s is a known order source.
func (s OrderSource) Valid() bool {
	switch s {
	case OrderSourceStore, OrderSourceOnline:
		return true
	}
	return false
}

func (s OrderSource) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid order source %q", string(s))
	}
	return string(s), nil
}

func (s *OrderSource) Scan(src any) error {
	v, err := scanEnum(src)
	if err != nil {
		return fmt.Errorf("scan order source: %w", err)
	}
	*s = OrderSource(v)
	return nil
}

// FulfillmentModality is the path an ordered item takes to its destination.
type FulfillmentModality string

const (
	ModalityWareToHome     FulfillmentModality = "ware_to_home"
	ModalityWareToStore    FulfillmentModality = "ware_to_store"
	ModalityStoreToHome    FulfillmentModality = "store_to_home"
	ModalityStoreInventory FulfillmentModality = "store_inventory"
)

// Modalities lists every fulfillment modality in declaration order.
var Modalities = []FulfillmentModality{
	ModalityWareToHome,
	ModalityWareToStore,
	ModalityStoreToHome,
	ModalityStoreInventory,
}

// HomeModalities are the modalities whose destination is a customer address.
var HomeModalities = []FulfillmentModality{
	ModalityWareToHome,
	ModalityStoreToHome,
}

func (m FulfillmentModality) Valid() bool {
	for _, known := range Modalities {
		if m == known {
			return true
		}
	}
	return false
}

// DeliversHome reports whether items with this modality ship to a customer address.
func (m FulfillmentModality) DeliversHome() bool {
	return m == ModalityWareToHome || m == ModalityStoreToHome
}

func (m FulfillmentModality) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid fulfillment modality %q", string(m))
	}
	return string(m), nil
}

func (m *FulfillmentModality) Scan(src any) error {
	v, err := scanEnum(src)
	if err != nil {
		return fmt.Errorf("scan fulfillment modality: %w", err)
	}
	*m = FulfillmentModality(v)
	return nil
}

func scanEnum(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported type %T", src)
	}
}

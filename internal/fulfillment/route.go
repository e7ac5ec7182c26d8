// Package fulfillment decides whether an order item's routing fields match its
// declared fulfillment modality.
package fulfillment

import (
	"errors"
	"fmt"
	"strings"

	"pier/models"
)

// Field names a routing field on an order item.
type Field string

const (
	FieldSourceWarehouse     Field = "source_warehouse_id"
	FieldSourceStore         Field = "source_store_id"
	FieldDestStore           Field = "dest_store_id"
	FieldDestCustomerAddress Field = "dest_customer_address_id"
)

var allFields = []Field{
	FieldSourceWarehouse,
	FieldSourceStore,
	FieldDestStore,
	FieldDestCustomerAddress,
}

// requiredFields is the single source of truth for routing. Every field not
// listed for a modality must be absent.
var requiredFields = map[models.FulfillmentModality][]Field{
	models.ModalityWareToHome:     {FieldSourceWarehouse, FieldDestCustomerAddress},
	models.ModalityWareToStore:    {FieldSourceWarehouse, FieldDestStore},
	models.ModalityStoreToHome:    {FieldSourceStore, FieldDestCustomerAddress},
	models.ModalityStoreInventory: {FieldSourceStore},
}

// ErrUnknownModality is returned when the modality has no routing rule.
var ErrUnknownModality = errors.New("fulfillment: unknown modality")

// Fields holds the raw, possibly unset, routing identifiers of an order item.
type Fields struct {
	SourceWarehouseID     *int64
	SourceStoreID         *int64
	DestStoreID           *int64
	DestCustomerAddressID *int64
}

func (f Fields) get(field Field) *int64 {
	switch field {
	case FieldSourceWarehouse:
		return f.SourceWarehouseID
	case FieldSourceStore:
		return f.SourceStoreID
	case FieldDestStore:
		return f.DestStoreID
	case FieldDestCustomerAddress:
		return f.DestCustomerAddressID
	}
	return nil
}

// RoutingError reports a mismatch between a modality and the populated fields.
type RoutingError struct {
	Modality   models.FulfillmentModality
	Missing    []Field
	Unexpected []Field
}

func (e *RoutingError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+joinFields(e.Missing))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+joinFields(e.Unexpected))
	}
	return fmt.Sprintf("fulfillment modality %s: %s", e.Modality, strings.Join(parts, "; "))
}

func joinFields(fields []Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Route is a validated routing for one order item. Each variant carries
// exactly the identifiers its modality requires.
type Route interface {
	Modality() models.FulfillmentModality
	Fields() Fields
	route()
}

// HomeDelivery is implemented by routes that end at a customer address.
type HomeDelivery interface {
	Route
	DestinationAddressID() int64
}

type WareToHome struct {
	SourceWarehouseID     int64
	DestCustomerAddressID int64
}

type WareToStore struct {
	SourceWarehouseID int64
	DestStoreID       int64
}

type StoreToHome struct {
	SourceStoreID         int64
	DestCustomerAddressID int64
}

type StoreInventory struct {
	SourceStoreID int64
}

func (WareToHome) Modality() models.FulfillmentModality     { return models.ModalityWareToHome }
func (WareToStore) Modality() models.FulfillmentModality    { return models.ModalityWareToStore }
func (StoreToHome) Modality() models.FulfillmentModality    { return models.ModalityStoreToHome }
func (StoreInventory) Modality() models.FulfillmentModality { return models.ModalityStoreInventory }

func (r WareToHome) Fields() Fields {
	return Fields{SourceWarehouseID: ptr(r.SourceWarehouseID), DestCustomerAddressID: ptr(r.DestCustomerAddressID)}
}

func (r WareToStore) Fields() Fields {
	return Fields{SourceWarehouseID: ptr(r.SourceWarehouseID), DestStoreID: ptr(r.DestStoreID)}
}

func (r StoreToHome) Fields() Fields {
	return Fields{SourceStoreID: ptr(r.SourceStoreID), DestCustomerAddressID: ptr(r.DestCustomerAddressID)}
}

func (r StoreInventory) Fields() Fields {
	return Fields{SourceStoreID: ptr(r.SourceStoreID)}
}

func (r WareToHome) DestinationAddressID() int64  { return r.DestCustomerAddressID }
func (r StoreToHome) DestinationAddressID() int64 { return r.DestCustomerAddressID }

func (WareToHome) route()     {}
func (WareToStore) route()    {}
func (StoreToHome) route()    {}
func (StoreInventory) route() {}

// Check applies the routing table to a modality and its raw fields.
func Check(modality models.FulfillmentModality, f Fields) error {
	required, ok := requiredFields[modality]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModality, string(modality))
	}

	rerr := &RoutingError{Modality: modality}
	for _, field := range allFields {
		present := f.get(field) != nil
		switch {
		case contains(required, field) && !present:
			rerr.Missing = append(rerr.Missing, field)
		case !contains(required, field) && present:
			rerr.Unexpected = append(rerr.Unexpected, field)
		}
	}
	if len(rerr.Missing) > 0 || len(rerr.Unexpected) > 0 {
		return rerr
	}
	return nil
}

// Resolve validates the raw fields against the modality and returns the
// matching Route variant.
func Resolve(modality models.FulfillmentModality, f Fields) (Route, error) {
	if err := Check(modality, f); err != nil {
		return nil, err
	}
	switch modality {
	case models.ModalityWareToHome:
		return WareToHome{SourceWarehouseID: *f.SourceWarehouseID, DestCustomerAddressID: *f.DestCustomerAddressID}, nil
	case models.ModalityWareToStore:
		return WareToStore{SourceWarehouseID: *f.SourceWarehouseID, DestStoreID: *f.DestStoreID}, nil
	case models.ModalityStoreToHome:
		return StoreToHome{SourceStoreID: *f.SourceStoreID, DestCustomerAddressID: *f.DestCustomerAddressID}, nil
	default:
		return StoreInventory{SourceStoreID: *f.SourceStoreID}, nil
	}
}

// RequiredFields returns a copy of the fields a modality requires.
func RequiredFields(modality models.FulfillmentModality) []Field {
	return append([]Field(nil), requiredFields[modality]...)
}

// Apply writes the route onto an order item row, clearing unrelated fields.
func Apply(item *models.OrderItem, r Route) {
	f := r.Fields()
	item.FulfillmentModality = r.Modality()
	item.SourceWarehouseID = f.SourceWarehouseID
	item.SourceStoreID = f.SourceStoreID
	item.DestStoreID = f.DestStoreID
	item.DestCustomerAddressID = f.DestCustomerAddressID
}

// FieldsOf extracts the raw routing fields of a stored order item.
func FieldsOf(item models.OrderItem) Fields {
	return Fields{
		SourceWarehouseID:     item.SourceWarehouseID,
		SourceStoreID:         item.SourceStoreID,
		DestStoreID:           item.DestStoreID,
		DestCustomerAddressID: item.DestCustomerAddressID,
	}
}

func contains(fields []Field, target Field) bool {
	for _, f := range fields {
		if f == target {
			return true
		}
	}
	return false
}

func ptr(v int64) *int64 {
	return &v
}

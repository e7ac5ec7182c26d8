// Package intake decides whether a proposed order may be persisted. Checks
// run in a fixed order (header, billing address, shipping addresses, then
// per-item routing) and the first failure is returned.
package intake

import (
	"context"
	"fmt"
	"slices"
	"time"

	"pier/internal/fulfillment"
	"pier/internal/repositories"
	"pier/models"
)

// Header is the proposed order header.
type Header struct {
	CustomerID int64
	// TimeOfOrder keeps the submitted offset. The accepted order is stored in UTC.
	TimeOfOrder      time.Time
	Source           models.OrderSource
	BillingAddressID int64
}

// Line is one proposed order item with its raw routing fields.
type Line struct {
	ItemID       int64
	Modality     models.FulfillmentModality
	Quantity     int
	PricePerItem float64
	Routing      fulfillment.Fields
}

type Validator struct {
	customers repositories.CustomerRepository
	addresses repositories.AddressRepository
}

func NewValidator(customers repositories.CustomerRepository, addresses repositories.AddressRepository) *Validator {
	return &Validator{customers: customers, addresses: addresses}
}

// Validate runs every intake check and, on success, returns the order ready
// for insertion with each item's routing resolved. Lookups use ctx, so
// calling Validate inside a unit of work reads through its transaction.
func (v *Validator) Validate(ctx context.Context, header Header, lines []Line) (models.Order, error) {
	if err := v.checkHeader(ctx, header); err != nil {
		return models.Order{}, err
	}
	if err := v.checkBillingAddress(ctx, header); err != nil {
		return models.Order{}, err
	}
	if err := v.checkShippingAddresses(ctx, lines); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		CustomerID:       header.CustomerID,
		TimeOfOrder:      header.TimeOfOrder.UTC(),
		Source:           header.Source,
		BillingAddressID: header.BillingAddressID,
		Items:            make([]models.OrderItem, 0, len(lines)),
	}
	for i, line := range lines {
		route, err := fulfillment.Resolve(line.Modality, line.Routing)
		if err != nil {
			return models.Order{}, routingViolation(i, line.Modality, err)
		}
		item := models.OrderItem{
			ItemID:       line.ItemID,
			Quantity:     line.Quantity,
			PricePerItem: line.PricePerItem,
		}
		fulfillment.Apply(&item, route)
		order.Items = append(order.Items, item)
	}
	return order, nil
}

func (v *Validator) checkHeader(ctx context.Context, header Header) error {
	if !header.Source.Valid() {
		return rejected(RuleSource, "unknown order source %q", string(header.Source))
	}
	if !HasTimeOfDay(header.TimeOfOrder) {
		return rejected(RuleTimeOfDay, "time_of_order %s has no time-of-day component", header.TimeOfOrder.Format(time.DateOnly))
	}
	if _, err := v.customers.FindByID(ctx, header.CustomerID); err != nil {
		if repositories.IsNotFound(err) {
			return notFound(RuleCustomer, "customer %d not found", header.CustomerID)
		}
		return fmt.Errorf("lookup customer %d: %w", header.CustomerID, err)
	}
	return nil
}

func (v *Validator) checkBillingAddress(ctx context.Context, header Header) error {
	address, err := v.addresses.FindByID(ctx, header.BillingAddressID)
	if err != nil {
		if repositories.IsNotFound(err) {
			viol := notFound(RuleBillingAddress, "billing address %d not found", header.BillingAddressID)
			viol.AddressIDs = []int64{header.BillingAddressID}
			return viol
		}
		return fmt.Errorf("lookup billing address %d: %w", header.BillingAddressID, err)
	}
	if address.CustomerID != header.CustomerID {
		viol := rejected(RuleBillingOwner, "billing address %d does not belong to customer %d", address.CustomerAddressID, header.CustomerID)
		viol.AddressIDs = []int64{address.CustomerAddressID}
		return viol
	}
	if !address.IsBilling {
		viol := rejected(RuleBillingAddress, "address %d is not a billing address", address.CustomerAddressID)
		viol.AddressIDs = []int64{address.CustomerAddressID}
		return viol
	}
	return nil
}

// checkShippingAddresses resolves every home-delivery destination in one
// batch. A destination that does not resolve is a not-found error rather
// than a flag failure.
func (v *Validator) checkShippingAddresses(ctx context.Context, lines []Line) error {
	ids := ShippingAddressIDs(lines)
	if len(ids) == 0 {
		return nil
	}

	addresses, err := v.addresses.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("lookup shipping addresses: %w", err)
	}

	found := make(map[int64]models.CustomerAddress, len(addresses))
	for _, a := range addresses {
		found[a.CustomerAddressID] = a
	}

	var missing, notShipping []int64
	for _, id := range ids {
		a, ok := found[id]
		switch {
		case !ok:
			missing = append(missing, id)
		case !a.IsShipping:
			notShipping = append(notShipping, id)
		}
	}
	if len(missing) > 0 {
		viol := notFound(RuleShippingAddress, "shipping addresses %v not found", missing)
		viol.AddressIDs = missing
		return viol
	}
	if len(notShipping) > 0 {
		viol := rejected(RuleShippingAddress, "addresses %v are not shipping addresses", notShipping)
		viol.AddressIDs = notShipping
		return viol
	}
	return nil
}

// ShippingAddressIDs returns the distinct destination addresses of lines
// whose modality delivers to a customer address, in ascending order.
func ShippingAddressIDs(lines []Line) []int64 {
	var ids []int64
	for _, line := range lines {
		if !line.Modality.DeliversHome() || line.Routing.DestCustomerAddressID == nil {
			continue
		}
		id := *line.Routing.DestCustomerAddressID
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// HasTimeOfDay reports whether t carries a clock component beyond midnight,
// read in t's own location.
func HasTimeOfDay(t time.Time) bool {
	h, m, s := t.Clock()
	return h != 0 || m != 0 || s != 0 || t.Nanosecond() != 0
}

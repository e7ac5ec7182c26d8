package intake

import (
	"errors"
	"fmt"

	"pier/internal/fulfillment"
	"pier/models"
)

var (
	// ErrNotFound marks a referenced customer or address that does not exist.
	ErrNotFound = errors.New("intake: referenced entity not found")
	// ErrRejected marks an order that breaks a business rule.
	ErrRejected = errors.New("intake: order rejected")
)

// Rule names the check that rejected an order.
type Rule string

const (
	RuleSource          Rule = "order_source"
	RuleTimeOfDay       Rule = "time_of_day"
	RuleCustomer        Rule = "customer_exists"
	RuleBillingAddress  Rule = "billing_address"
	RuleBillingOwner    Rule = "billing_address_owner"
	RuleShippingAddress Rule = "shipping_address"
	RuleRouting         Rule = "fulfillment_routing"
)

// Violation describes why an order was not accepted. ItemIndex is -1 for
// header-level checks.
type Violation struct {
	Kind      error
	Rule      Rule
	ItemIndex int
	Message   string
	// Routing is set when Rule is RuleRouting.
	Routing *fulfillment.RoutingError
	// AddressIDs lists the offending addresses for address rules.
	AddressIDs []int64
}

func (v *Violation) Error() string {
	if v.ItemIndex >= 0 {
		return fmt.Sprintf("%s (item %d): %s", v.Rule, v.ItemIndex, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

func (v *Violation) Unwrap() []error {
	errs := []error{v.Kind}
	if v.Routing != nil {
		errs = append(errs, v.Routing)
	}
	return errs
}

func notFound(rule Rule, format string, args ...any) *Violation {
	return &Violation{Kind: ErrNotFound, Rule: rule, ItemIndex: -1, Message: fmt.Sprintf(format, args...)}
}

func rejected(rule Rule, format string, args ...any) *Violation {
	return &Violation{Kind: ErrRejected, Rule: rule, ItemIndex: -1, Message: fmt.Sprintf(format, args...)}
}

func routingViolation(index int, modality models.FulfillmentModality, err error) *Violation {
	v := &Violation{Kind: ErrRejected, Rule: RuleRouting, ItemIndex: index, Message: err.Error()}
	var rerr *fulfillment.RoutingError
	if errors.As(err, &rerr) {
		v.Routing = rerr
	} else {
		v.Message = fmt.Sprintf("unsupported fulfillment modality %q", string(modality))
	}
	return v
}

package services

import "errors"

var (
	ErrCustomerInvalidInput = errors.New("customer: invalid input")
	ErrCustomerNotFound     = errors.New("customer: not found")
	ErrCustomerConflict     = errors.New("customer: already exists")

	ErrAddressInvalidInput = errors.New("address: invalid input")
	ErrAddressNotFound     = errors.New("address: not found")

	ErrAssetInvalidInput = errors.New("asset: invalid input")
	ErrAssetNotFound     = errors.New("asset: not found")

	ErrOrderInvalidInput = errors.New("order: invalid input")
	ErrOrderNotFound     = errors.New("order: not found")
	// ErrOrderRejected wraps an *intake.Violation describing the broken rule.
	ErrOrderRejected = errors.New("order: rejected")
	// ErrOrderReferenceNotFound marks an order pointing at a customer, address,
	// item, store or warehouse that does not exist.
	ErrOrderReferenceNotFound = errors.New("order: referenced entity not found")

	ErrReportInvalidInput = errors.New("report: invalid input")
)

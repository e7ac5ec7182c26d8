package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pier/internal/repositories"
	"pier/internal/validation"
	"pier/models"
)

type customerService struct {
	customers repositories.CustomerRepository
	addresses repositories.AddressRepository
}

var _ CustomerService = (*customerService)(nil)

// NewCustomerService builds the customer service over the given store.
func NewCustomerService(store repositories.Store) (CustomerService, error) {
	if store == nil {
		return nil, errors.New("customer service: store is required")
	}
	return &customerService{customers: store.Customers(), addresses: store.Addresses()}, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, cmd CreateCustomerCommand) (models.Customer, error) {
	cmd.Email = strings.TrimSpace(cmd.Email)
	cmd.FirstName = strings.TrimSpace(cmd.FirstName)
	cmd.LastName = strings.TrimSpace(cmd.LastName)
	cmd.Phone = trimOptional(cmd.Phone)

	if err := validation.Struct(cmd); err != nil {
		return models.Customer{}, fmt.Errorf("%w: %w", ErrCustomerInvalidInput, err)
	}

	customer := models.Customer{
		Email:     cmd.Email,
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Phone:     cmd.Phone,
	}
	if err := s.customers.Insert(ctx, &customer); err != nil {
		if repositories.IsConflict(err) {
			return models.Customer{}, fmt.Errorf("%w: email or phone already registered", ErrCustomerConflict)
		}
		return models.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (models.Customer, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return models.Customer{}, ErrCustomerNotFound
		}
		return models.Customer{}, fmt.Errorf("get customer %d: %w", customerID, err)
	}
	return customer, nil
}

// AddAddress stores a new address for an existing customer. An address must
// take at least one role, billing or shipping.
func (s *customerService) AddAddress(ctx context.Context, cmd CreateAddressCommand) (models.CustomerAddress, error) {
	cmd.AddressLine1 = strings.TrimSpace(cmd.AddressLine1)
	cmd.AddressLine2 = trimOptional(cmd.AddressLine2)
	cmd.City = strings.TrimSpace(cmd.City)
	cmd.State = strings.TrimSpace(cmd.State)
	cmd.ZipCode = strings.TrimSpace(cmd.ZipCode)

	fields := validation.FieldErrors{}
	if err := validation.Struct(cmd); err != nil {
		var fe validation.FieldErrors
		if !errors.As(err, &fe) {
			return models.CustomerAddress{}, fmt.Errorf("validate address: %w", err)
		}
		fields = fe
	}
	if !cmd.IsBilling && !cmd.IsShipping {
		fields["is_billing"] = "at least one of is_billing or is_shipping must be true"
	}
	if len(fields) > 0 {
		return models.CustomerAddress{}, fmt.Errorf("%w: %w", ErrAddressInvalidInput, fields)
	}

	address := models.CustomerAddress{
		CustomerID:   cmd.CustomerID,
		AddressLine1: cmd.AddressLine1,
		AddressLine2: cmd.AddressLine2,
		City:         cmd.City,
		State:        cmd.State,
		ZipCode:      cmd.ZipCode,
		IsBilling:    cmd.IsBilling,
		IsShipping:   cmd.IsShipping,
	}
	if err := s.addresses.Insert(ctx, &address); err != nil {
		if repositories.IsMissingReference(err) {
			return models.CustomerAddress{}, ErrCustomerNotFound
		}
		return models.CustomerAddress{}, fmt.Errorf("create address: %w", err)
	}
	return address, nil
}

func (s *customerService) GetAddress(ctx context.Context, addressID int64) (models.CustomerAddress, error) {
	address, err := s.addresses.FindByID(ctx, addressID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return models.CustomerAddress{}, ErrAddressNotFound
		}
		return models.CustomerAddress{}, fmt.Errorf("get address %d: %w", addressID, err)
	}
	return address, nil
}

func (s *customerService) ListAddresses(ctx context.Context, customerID int64) ([]models.CustomerAddress, error) {
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	addresses, err := s.addresses.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses for customer %d: %w", customerID, err)
	}
	return addresses, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

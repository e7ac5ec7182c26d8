package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pier/internal/repositories"
	"pier/models"
)

const (
	DefaultInstoreTopK = 5
	maxInstoreTopK     = 1000
)

type reportService struct {
	customers repositories.CustomerRepository
	orders    repositories.OrderRepository
	reports   repositories.ReportRepository
}

var _ ReportService = (*reportService)(nil)

func NewReportService(store repositories.Store) (ReportService, error) {
	if store == nil {
		return nil, errors.New("report service: store is required")
	}
	return &reportService{
		customers: store.Customers(),
		orders:    store.Orders(),
		reports:   store.Reports(),
	}, nil
}

// OrderHistory returns every order of the customer identified by email or
// phone, oldest first.
func (s *reportService) OrderHistory(ctx context.Context, query OrderHistoryQuery) (OrderHistory, error) {
	email := strings.TrimSpace(query.Email)
	phone := strings.TrimSpace(query.Phone)

	var (
		customer models.Customer
		err      error
	)
	switch {
	case email != "" && phone != "":
		return OrderHistory{}, fmt.Errorf("%w: provide either email or phone, not both", ErrReportInvalidInput)
	case email != "":
		customer, err = s.customers.FindByEmail(ctx, email)
	case phone != "":
		customer, err = s.customers.FindByPhone(ctx, phone)
	default:
		return OrderHistory{}, fmt.Errorf("%w: email or phone is required", ErrReportInvalidInput)
	}
	if err != nil {
		if repositories.IsNotFound(err) {
			return OrderHistory{}, ErrCustomerNotFound
		}
		return OrderHistory{}, fmt.Errorf("lookup customer: %w", err)
	}

	orders, err := s.orders.ListByCustomer(ctx, customer.CustomerID)
	if err != nil {
		return OrderHistory{}, fmt.Errorf("list orders for customer %d: %w", customer.CustomerID, err)
	}
	return OrderHistory{Customer: customer, Orders: orders}, nil
}

func (s *reportService) BillingZipCounts(ctx context.Context) ([]models.ZipCount, error) {
	counts, err := s.reports.CountOrdersByBillingZip(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders by billing zip: %w", err)
	}
	return counts, nil
}

// ShippingZipCounts counts distinct orders per destination zip code across
// the modalities that deliver to a customer address.
func (s *reportService) ShippingZipCounts(ctx context.Context) ([]models.ZipCount, error) {
	counts, err := s.reports.CountOrdersByShippingZip(ctx, models.HomeModalities)
	if err != nil {
		return nil, fmt.Errorf("count orders by shipping zip: %w", err)
	}
	return counts, nil
}

func (s *reportService) InstoreShoppers(ctx context.Context, topK int) ([]models.CustomerOrderCount, error) {
	if topK == 0 {
		topK = DefaultInstoreTopK
	}
	if topK < 0 || topK > maxInstoreTopK {
		return nil, fmt.Errorf("%w: top_k must be between 1 and %d", ErrReportInvalidInput, maxInstoreTopK)
	}
	shoppers, err := s.reports.TopCustomersBySource(ctx, models.OrderSourceStore, topK)
	if err != nil {
		return nil, fmt.Errorf("top in-store shoppers: %w", err)
	}
	return shoppers, nil
}

package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pier/internal/repositories"
	"pier/models"
)

// newTestStore connects to the database named by PIER_TEST_POSTGRES_DSN and
// starts every test from empty tables.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("PIER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PIER_TEST_POSTGRES_DSN not set")
	}

	client, err := NewClient(PostgresConfig{URL: dsn}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Migrate(ctx))
	require.NoError(t, client.DB().WithContext(ctx).Exec(
		"TRUNCATE order_items, orders, customer_addresses, customers, stores, warehouses, items RESTART IDENTITY CASCADE",
	).Error)
	return NewStore(client)
}

func insertCustomer(t *testing.T, s *Store, email string, phone *string) models.Customer {
	t.Helper()
	c := models.Customer{Email: email, FirstName: "Test", LastName: "User", Phone: phone}
	require.NoError(t, s.Customers().Insert(context.Background(), &c))
	return c
}

func insertAddress(t *testing.T, s *Store, customerID int64, zip string, billing, shipping bool) models.CustomerAddress {
	t.Helper()
	a := models.CustomerAddress{
		CustomerID: customerID, AddressLine1: "1 Main St", City: "Springfield",
		State: "IL", ZipCode: zip, IsBilling: billing, IsShipping: shipping,
	}
	require.NoError(t, s.Addresses().Insert(context.Background(), &a))
	return a
}

func TestPostgresCustomerConstraints(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	phone := "555-123-4567"
	insertCustomer(t, s, "a@example.com", &phone)

	dupEmail := models.Customer{Email: "a@example.com", FirstName: "B", LastName: "B"}
	assert.True(t, repositories.IsConflict(s.Customers().Insert(ctx, &dupEmail)))

	dupPhone := models.Customer{Email: "b@example.com", FirstName: "B", LastName: "B", Phone: &phone}
	assert.True(t, repositories.IsConflict(s.Customers().Insert(ctx, &dupPhone)))

	// Several customers without a phone may coexist.
	insertCustomer(t, s, "c@example.com", nil)
	insertCustomer(t, s, "d@example.com", nil)

	found, err := s.Customers().FindByPhone(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", found.Email)

	_, err = s.Customers().FindByID(ctx, 9999)
	assert.True(t, repositories.IsNotFound(err))
}

func TestPostgresAddressReferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	orphan := models.CustomerAddress{CustomerID: 9999, AddressLine1: "x", City: "x", State: "NY", ZipCode: "10001", IsBilling: true}
	assert.True(t, repositories.IsMissingReference(s.Addresses().Insert(ctx, &orphan)))

	c := insertCustomer(t, s, "a@example.com", nil)
	a1 := insertAddress(t, s, c.CustomerID, "10001", true, false)
	a2 := insertAddress(t, s, c.CustomerID, "73301", false, true)

	got, err := s.Addresses().FindByIDs(ctx, []int64{a2.CustomerAddressID, 9999, a1.CustomerAddressID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a1.CustomerAddressID, got[0].CustomerAddressID)
	assert.Equal(t, a2.CustomerAddressID, got[1].CustomerAddressID)
}

func TestPostgresRunInTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		c := models.Customer{Email: "gone@example.com", FirstName: "G", LastName: "G"}
		if err := s.Customers().Insert(ctx, &c); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Customers().FindByEmail(ctx, "gone@example.com")
	assert.True(t, repositories.IsNotFound(err))
}

func TestPostgresOrderRoundTripAndReports(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c1 := insertCustomer(t, s, "a@example.com", nil)
	c2 := insertCustomer(t, s, "b@example.com", nil)
	bill1 := insertAddress(t, s, c1.CustomerID, "10001", true, true)
	bill2 := insertAddress(t, s, c2.CustomerID, "73301", true, false)
	ship2 := insertAddress(t, s, c2.CustomerID, "94105", false, true)

	shop := models.Store{Name: "Downtown"}
	require.NoError(t, s.Stores().Insert(ctx, &shop))
	warehouse := models.Warehouse{Name: "North"}
	require.NoError(t, s.Warehouses().Insert(ctx, &warehouse))
	item := models.Item{Name: "Lamp"}
	require.NoError(t, s.Items().Insert(ctx, &item))

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	place := func(customerID, billingID int64, source models.OrderSource, at time.Time, items ...models.OrderItem) models.Order {
		o := models.Order{CustomerID: customerID, TimeOfOrder: at, Source: source, BillingAddressID: billingID, Items: items}
		require.NoError(t, s.RunInTx(ctx, func(ctx context.Context) error {
			return s.Orders().Insert(ctx, &o)
		}))
		return o
	}
	instore := func() models.OrderItem {
		return models.OrderItem{ItemID: item.ItemID, FulfillmentModality: models.ModalityStoreInventory, Quantity: 1, PricePerItem: 2, SourceStoreID: &shop.StoreID}
	}
	home := func(dest int64) models.OrderItem {
		return models.OrderItem{ItemID: item.ItemID, FulfillmentModality: models.ModalityWareToHome, Quantity: 3, PricePerItem: 1.5, SourceWarehouseID: &warehouse.WarehouseID, DestCustomerAddressID: &dest}
	}

	later := place(c1.CustomerID, bill1.CustomerAddressID, models.OrderSourceStore, base.Add(time.Hour), instore())
	earlier := place(c1.CustomerID, bill1.CustomerAddressID, models.OrderSourceStore, base, instore(), home(bill1.CustomerAddressID))
	place(c2.CustomerID, bill2.CustomerAddressID, models.OrderSourceOnline, base, home(ship2.CustomerAddressID), home(ship2.CustomerAddressID))

	got, err := s.Orders().FindByID(ctx, earlier.OrderID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.True(t, got.TimeOfOrder.Equal(base))
	assert.Nil(t, got.Items[0].DestCustomerAddressID)
	require.NotNil(t, got.Items[1].DestCustomerAddressID)
	assert.Equal(t, bill1.CustomerAddressID, *got.Items[1].DestCustomerAddressID)

	history, err := s.Orders().ListByCustomer(ctx, c1.CustomerID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, earlier.OrderID, history[0].OrderID)
	assert.Equal(t, later.OrderID, history[1].OrderID)

	billing, err := s.Reports().CountOrdersByBillingZip(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ZipCount{{ZipCode: "10001", OrderCount: 2}, {ZipCode: "73301", OrderCount: 1}}, billing)

	shipping, err := s.Reports().CountOrdersByShippingZip(ctx, models.HomeModalities)
	require.NoError(t, err)
	assert.Equal(t, []models.ZipCount{{ZipCode: "10001", OrderCount: 1}, {ZipCode: "94105", OrderCount: 1}}, shipping)

	top, err := s.Reports().TopCustomersBySource(ctx, models.OrderSourceStore, 5)
	require.NoError(t, err)
	assert.Equal(t, []models.CustomerOrderCount{{CustomerID: c1.CustomerID, OrderCount: 2}}, top)
}

func TestPostgresOrderInsertIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := insertCustomer(t, s, "a@example.com", nil)
	bill := insertAddress(t, s, c.CustomerID, "10001", true, false)
	item := models.Item{Name: "Lamp"}
	require.NoError(t, s.Items().Insert(ctx, &item))

	missingStore := int64(9999)
	o := models.Order{
		CustomerID: c.CustomerID, TimeOfOrder: time.Now().UTC(), Source: models.OrderSourceStore,
		BillingAddressID: bill.CustomerAddressID,
		Items: []models.OrderItem{
			{ItemID: item.ItemID, FulfillmentModality: models.ModalityStoreInventory, Quantity: 1, PricePerItem: 1, SourceStoreID: &missingStore},
		},
	}
	err := s.RunInTx(ctx, func(ctx context.Context) error { return s.Orders().Insert(ctx, &o) })
	require.Error(t, err)
	assert.True(t, repositories.IsMissingReference(err))

	orders, err := s.Orders().ListByCustomer(ctx, c.CustomerID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

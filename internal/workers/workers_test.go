package workers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pier/internal/rabbitmq"
	"pier/internal/repositories"
	"pier/internal/repositories/memory"
	"pier/models"
)

type recordingSink struct {
	orders []models.OrderFact
	items  []models.OrderItemFact
	err    error
}

func (s *recordingSink) InsertOrderFact(_ context.Context, fact models.OrderFact) error {
	if s.err != nil {
		return s.err
	}
	s.orders = append(s.orders, fact)
	return nil
}

func (s *recordingSink) InsertOrderItemFacts(_ context.Context, facts []models.OrderItemFact) error {
	if s.err != nil {
		return s.err
	}
	s.items = append(s.items, facts...)
	return nil
}

type capturingConsumer struct {
	queue   string
	handler rabbitmq.Handler
}

func (c *capturingConsumer) ConsumeQueue(_ context.Context, queue string, handler rabbitmq.Handler) error {
	c.queue = queue
	c.handler = handler
	return nil
}

// flakyOrders fails the first n lookups with a transient error.
type flakyOrders struct {
	repositories.OrderRepository
	failures int
	calls    int
}

func (f *flakyOrders) FindByID(ctx context.Context, id int64) (models.Order, error) {
	f.calls++
	if f.calls <= f.failures {
		return models.Order{}, errors.New("connection reset")
	}
	return f.OrderRepository.FindByID(ctx, id)
}

type flakyLoader struct {
	*memory.Store
	orders *flakyOrders
}

func (l flakyLoader) Orders() repositories.OrderRepository { return l.orders }

var fixedNow = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

type seeded struct {
	store *memory.Store
	order models.Order
}

func seed(t *testing.T) seeded {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	customer := models.Customer{Email: "ana@example.com", FirstName: "Ana", LastName: "Diaz"}
	require.NoError(t, store.Customers().Insert(ctx, &customer))

	billing := models.CustomerAddress{
		CustomerID: customer.CustomerID, AddressLine1: "1 Main St", City: "Austin",
		State: "TX", ZipCode: "73301", IsBilling: true,
	}
	require.NoError(t, store.Addresses().Insert(ctx, &billing))
	shipping := models.CustomerAddress{
		CustomerID: customer.CustomerID, AddressLine1: "9 Elm St", City: "New York",
		State: "NY", ZipCode: "10001", IsShipping: true,
	}
	require.NoError(t, store.Addresses().Insert(ctx, &shipping))

	shop := models.Store{Name: "Downtown"}
	require.NoError(t, store.Stores().Insert(ctx, &shop))
	warehouse := models.Warehouse{Name: "North"}
	require.NoError(t, store.Warehouses().Insert(ctx, &warehouse))
	item := models.Item{Name: "Lamp"}
	require.NoError(t, store.Items().Insert(ctx, &item))

	order := models.Order{
		CustomerID:       customer.CustomerID,
		TimeOfOrder:      time.Date(2024, 3, 7, 15, 30, 0, 0, time.UTC),
		Source:           models.OrderSourceOnline,
		BillingAddressID: billing.CustomerAddressID,
		Items: []models.OrderItem{
			{
				ItemID: item.ItemID, FulfillmentModality: models.ModalityWareToHome,
				Quantity: 2, PricePerItem: 10.5,
				SourceWarehouseID: &warehouse.WarehouseID, DestCustomerAddressID: &shipping.CustomerAddressID,
			},
			{
				ItemID: item.ItemID, FulfillmentModality: models.ModalityStoreInventory,
				Quantity: 1, PricePerItem: 4,
				SourceStoreID: &shop.StoreID,
			},
		},
	}
	require.NoError(t, store.Orders().Insert(ctx, &order))
	return seeded{store: store, order: order}
}

func newTestOrderWorker(loader OrderLoader, sink FactSink) *OrderWorker {
	w := NewOrderWorker(&capturingConsumer{}, loader, sink, "orders", zap.NewNop())
	w.retryDelay = time.Millisecond
	w.now = func() time.Time { return fixedNow }
	return w
}

func newTestOrderItemWorker(loader OrderLoader, sink FactSink) *OrderItemWorker {
	w := NewOrderItemWorker(&capturingConsumer{}, loader, sink, "order_items", zap.NewNop())
	w.retryDelay = time.Millisecond
	w.now = func() time.Time { return fixedNow }
	return w
}

func orderEvent(event string, orderID int64) []byte {
	return []byte(fmt.Sprintf(`{"event":%q,"order_id":%d,"customer_id":1,"source":"online","item_count":2}`, event, orderID))
}

func itemEvent(event string, orderID, itemID int64) []byte {
	return []byte(fmt.Sprintf(`{"event":%q,"order_id":%d,"order_item_id":%d}`, event, orderID, itemID))
}

func TestOrderWorkerWritesFact(t *testing.T) {
	s := seed(t)
	sink := &recordingSink{}
	w := newTestOrderWorker(s.store, sink)

	require.NoError(t, w.handleMessage(context.Background(), orderEvent("created", s.order.OrderID)))
	require.Len(t, sink.orders, 1)

	fact := sink.orders[0]
	assert.Equal(t, s.order.OrderID, fact.OrderID)
	assert.Equal(t, s.order.CustomerID, fact.CustomerID)
	assert.Equal(t, "07032024", fact.DateKey)
	assert.Equal(t, "online", fact.Source)
	assert.Equal(t, "73301", fact.BillingZipCode)
	assert.Equal(t, int32(2), fact.ItemCount)
	assert.Equal(t, int64(3), fact.TotalQuantity)
	assert.InDelta(t, 25.0, fact.TotalRevenue, 1e-9)
	assert.Equal(t, "create", fact.EventType)
	assert.Equal(t, fixedNow, fact.EventTime)
}

func TestOrderWorkerRejectsUnusableMessages(t *testing.T) {
	s := seed(t)
	sink := &recordingSink{}
	w := newTestOrderWorker(s.store, sink)

	cases := map[string][]byte{
		"malformed":     []byte(`{"event":`),
		"unknown event": orderEvent("cancelled", s.order.OrderID),
		"missing order": orderEvent("created", 999),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			err := w.handleMessage(context.Background(), body)
			require.Error(t, err)
			assert.ErrorIs(t, err, rabbitmq.ErrDiscard)
		})
	}
	assert.Empty(t, sink.orders)
}

func TestOrderWorkerRetriesTransientReads(t *testing.T) {
	s := seed(t)
	orders := &flakyOrders{OrderRepository: s.store.Orders(), failures: 2}
	sink := &recordingSink{}
	w := newTestOrderWorker(flakyLoader{Store: s.store, orders: orders}, sink)

	require.NoError(t, w.handleMessage(context.Background(), orderEvent("created", s.order.OrderID)))
	assert.Equal(t, 3, orders.calls)
	assert.Len(t, sink.orders, 1)
}

func TestOrderWorkerRequeuesWhenReadsKeepFailing(t *testing.T) {
	s := seed(t)
	orders := &flakyOrders{OrderRepository: s.store.Orders(), failures: maxRetries}
	w := newTestOrderWorker(flakyLoader{Store: s.store, orders: orders}, &recordingSink{})

	err := w.handleMessage(context.Background(), orderEvent("created", s.order.OrderID))
	require.Error(t, err)
	assert.NotErrorIs(t, err, rabbitmq.ErrDiscard)
	assert.Equal(t, maxRetries, orders.calls)
}

func TestOrderWorkerSinkFailureRequeues(t *testing.T) {
	s := seed(t)
	w := newTestOrderWorker(s.store, &recordingSink{err: errors.New("clickhouse down")})

	err := w.handleMessage(context.Background(), orderEvent("created", s.order.OrderID))
	require.Error(t, err)
	assert.NotErrorIs(t, err, rabbitmq.ErrDiscard)
}

func TestOrderItemWorkerWritesFacts(t *testing.T) {
	s := seed(t)
	sink := &recordingSink{}
	w := newTestOrderItemWorker(s.store, sink)

	for _, item := range s.order.Items {
		require.NoError(t, w.handleMessage(context.Background(), itemEvent("created", s.order.OrderID, item.OrderItemID)))
	}
	require.Len(t, sink.items, 2)

	home := sink.items[0]
	assert.Equal(t, s.order.Items[0].OrderItemID, home.OrderItemID)
	assert.Equal(t, "ware_to_home", home.Modality)
	assert.Equal(t, *s.order.Items[0].SourceWarehouseID, home.SourceWarehouseID)
	assert.Zero(t, home.SourceStoreID)
	assert.Zero(t, home.DestStoreID)
	assert.Equal(t, "10001", home.ShippingZipCode)
	assert.Equal(t, int64(2), home.Quantity)
	assert.InDelta(t, 21.0, home.Revenue, 1e-9)
	assert.Equal(t, "07032024", home.DateKey)

	instore := sink.items[1]
	assert.Equal(t, "store_inventory", instore.Modality)
	assert.Equal(t, *s.order.Items[1].SourceStoreID, instore.SourceStoreID)
	assert.Empty(t, instore.ShippingZipCode)
	assert.Zero(t, instore.SourceWarehouseID)
}

func TestOrderItemWorkerDiscardsForeignItem(t *testing.T) {
	s := seed(t)
	sink := &recordingSink{}
	w := newTestOrderItemWorker(s.store, sink)

	err := w.handleMessage(context.Background(), itemEvent("created", s.order.OrderID, 12345))
	require.Error(t, err)
	assert.ErrorIs(t, err, rabbitmq.ErrDiscard)

	err = w.handleMessage(context.Background(), itemEvent("updated", s.order.OrderID, s.order.Items[0].OrderItemID))
	assert.ErrorIs(t, err, rabbitmq.ErrDiscard)
	assert.Empty(t, sink.items)
}

func TestWorkersConsumeConfiguredQueues(t *testing.T) {
	s := seed(t)
	sink := &recordingSink{}

	orderConsumer := &capturingConsumer{}
	ow := NewOrderWorker(orderConsumer, s.store, sink, "pier.orders", nil)
	require.NoError(t, ow.Start(context.Background()))
	assert.Equal(t, "pier.orders", orderConsumer.queue)
	require.NotNil(t, orderConsumer.handler)

	itemConsumer := &capturingConsumer{}
	iw := NewOrderItemWorker(itemConsumer, s.store, sink, "pier.order_items", nil)
	require.NoError(t, iw.Start(context.Background()))
	assert.Equal(t, "pier.order_items", itemConsumer.queue)

	require.NoError(t, orderConsumer.handler(context.Background(), orderEvent("created", s.order.OrderID)))
	assert.Len(t, sink.orders, 1)
}

func TestWaitHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, wait(ctx, time.Hour), context.Canceled)
}

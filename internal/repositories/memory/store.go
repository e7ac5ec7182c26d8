// Package memory provides an in-process repositories.Store. It enforces the
// same unique and foreign-key constraints as the Postgres schema and makes
// RunInTx all-or-nothing by restoring a snapshot when fn fails. Identifier
// sequences sit outside the snapshot, so ids burned by a failed transaction
// are never handed out again.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"pier/internal/repositories"
	"pier/models"
)

var (
	errNotFound  = errors.New("record not found")
	errDuplicate = errors.New("duplicated key not allowed")
	errReference = errors.New("violates foreign key constraint")
)

type state struct {
	seq        map[string]int64
	customers  map[int64]models.Customer
	addresses  map[int64]models.CustomerAddress
	stores     map[int64]models.Store
	warehouses map[int64]models.Warehouse
	items      map[int64]models.Item
	orders     map[int64]models.Order
}

func newState() *state {
	return &state{
		seq:        map[string]int64{},
		customers:  map[int64]models.Customer{},
		addresses:  map[int64]models.CustomerAddress{},
		stores:     map[int64]models.Store{},
		warehouses: map[int64]models.Warehouse{},
		items:      map[int64]models.Item{},
		orders:     map[int64]models.Order{},
	}
}

// clone copies every table. seq is shared with the original.
func (s *state) clone() *state {
	c := &state{
		seq:        s.seq,
		customers:  cloneMap(s.customers),
		addresses:  cloneMap(s.addresses),
		stores:     cloneMap(s.stores),
		warehouses: cloneMap(s.warehouses),
		items:      cloneMap(s.items),
		orders:     make(map[int64]models.Order, len(s.orders)),
	}
	for id, o := range s.orders {
		c.orders[id] = cloneOrder(o)
	}
	return c
}

func (s *state) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// Store is safe for concurrent use. Transactions are serialised.
type Store struct {
	mu    sync.Mutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

var _ repositories.Store = (*Store)(nil)

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// with runs fn against the live state, taking the lock unless ctx already
// belongs to a running transaction.
func (s *Store) with(ctx context.Context, fn func(st *state) error) error {
	if !inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.state)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	committed := false
	defer func() {
		if !committed {
			s.state = snapshot
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Customers() repositories.CustomerRepository { return customerRepository{s} }
func (s *Store) Addresses() repositories.AddressRepository  { return addressRepository{s} }
func (s *Store) Orders() repositories.OrderRepository       { return orderRepository{s} }
func (s *Store) Reports() repositories.ReportRepository     { return reportRepository{s} }

func (s *Store) Stores() repositories.AssetRepository[models.Store] {
	return assetRepository[models.Store]{
		s:     s,
		table: func(st *state) map[int64]models.Store { return st.stores },
		setID: func(v *models.Store, id int64) { v.StoreID = id },
		op:    "stores",
	}
}

func (s *Store) Warehouses() repositories.AssetRepository[models.Warehouse] {
	return assetRepository[models.Warehouse]{
		s:     s,
		table: func(st *state) map[int64]models.Warehouse { return st.warehouses },
		setID: func(v *models.Warehouse, id int64) { v.WarehouseID = id },
		op:    "warehouses",
	}
}

func (s *Store) Items() repositories.AssetRepository[models.Item] {
	return assetRepository[models.Item]{
		s:     s,
		table: func(st *state) map[int64]models.Item { return st.items },
		setID: func(v *models.Item, id int64) { v.ItemID = id },
		op:    "items",
	}
}

type customerRepository struct{ s *Store }

func (r customerRepository) Insert(ctx context.Context, customer *models.Customer) error {
	return r.s.with(ctx, func(st *state) error {
		for _, existing := range st.customers {
			if existing.Email == customer.Email {
				return repositories.Conflict("customers.insert", fmt.Errorf("email: %w", errDuplicate))
			}
			if customer.Phone != nil && existing.Phone != nil && *existing.Phone == *customer.Phone {
				return repositories.Conflict("customers.insert", fmt.Errorf("phone: %w", errDuplicate))
			}
		}
		customer.CustomerID = st.next("customers")
		stored := *customer
		stored.Addresses = nil
		st.customers[customer.CustomerID] = stored
		return nil
	})
}

func (r customerRepository) FindByID(ctx context.Context, customerID int64) (models.Customer, error) {
	return r.find(ctx, "customers.find_by_id", func(c models.Customer) bool { return c.CustomerID == customerID })
}

func (r customerRepository) FindByEmail(ctx context.Context, email string) (models.Customer, error) {
	return r.find(ctx, "customers.find_by_email", func(c models.Customer) bool { return c.Email == email })
}

func (r customerRepository) FindByPhone(ctx context.Context, phone string) (models.Customer, error) {
	return r.find(ctx, "customers.find_by_phone", func(c models.Customer) bool { return c.Phone != nil && *c.Phone == phone })
}

func (r customerRepository) find(ctx context.Context, op string, match func(models.Customer) bool) (models.Customer, error) {
	var found models.Customer
	err := r.s.with(ctx, func(st *state) error {
		for _, c := range st.customers {
			if match(c) {
				found = c
				return nil
			}
		}
		return repositories.NotFound(op, errNotFound)
	})
	return found, err
}

type addressRepository struct{ s *Store }

func (r addressRepository) Insert(ctx context.Context, address *models.CustomerAddress) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.customers[address.CustomerID]; !ok {
			return repositories.MissingReference("addresses.insert", fmt.Errorf("customer_id: %w", errReference))
		}
		address.CustomerAddressID = st.next("customer_addresses")
		st.addresses[address.CustomerAddressID] = *address
		return nil
	})
}

func (r addressRepository) FindByID(ctx context.Context, addressID int64) (models.CustomerAddress, error) {
	var found models.CustomerAddress
	err := r.s.with(ctx, func(st *state) error {
		a, ok := st.addresses[addressID]
		if !ok {
			return repositories.NotFound("addresses.find_by_id", errNotFound)
		}
		found = a
		return nil
	})
	return found, err
}

func (r addressRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.CustomerAddress, error) {
	var out []models.CustomerAddress
	err := r.s.with(ctx, func(st *state) error {
		for _, id := range ids {
			if a, ok := st.addresses[id]; ok && !containsAddress(out, id) {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerAddressID < out[j].CustomerAddressID })
	return out, err
}

func (r addressRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.CustomerAddress, error) {
	var out []models.CustomerAddress
	err := r.s.with(ctx, func(st *state) error {
		for _, a := range st.addresses {
			if a.CustomerID == customerID {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerAddressID < out[j].CustomerAddressID })
	return out, err
}

type assetRepository[T any] struct {
	s     *Store
	table func(*state) map[int64]T
	setID func(*T, int64)
	op    string
}

func (r assetRepository[T]) Insert(ctx context.Context, asset *T) error {
	return r.s.with(ctx, func(st *state) error {
		id := st.next(r.op)
		r.setID(asset, id)
		r.table(st)[id] = *asset
		return nil
	})
}

func (r assetRepository[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var found T
	err := r.s.with(ctx, func(st *state) error {
		v, ok := r.table(st)[id]
		if !ok {
			return repositories.NotFound(r.op+".find_by_id", errNotFound)
		}
		found = v
		return nil
	})
	return found, err
}

type orderRepository struct{ s *Store }

func (r orderRepository) Insert(ctx context.Context, order *models.Order) error {
	return r.s.with(ctx, func(st *state) error {
		if err := checkOrderReferences(st, *order); err != nil {
			return repositories.MissingReference("orders.insert", err)
		}
		order.OrderID = st.next("orders")
		for i := range order.Items {
			order.Items[i].OrderItemID = st.next("order_items")
			order.Items[i].OrderID = order.OrderID
		}
		st.orders[order.OrderID] = cloneOrder(*order)
		return nil
	})
}

func checkOrderReferences(st *state, order models.Order) error {
	if _, ok := st.customers[order.CustomerID]; !ok {
		return fmt.Errorf("customer_id: %w", errReference)
	}
	if _, ok := st.addresses[order.BillingAddressID]; !ok {
		return fmt.Errorf("billing_address_id: %w", errReference)
	}
	for _, item := range order.Items {
		if _, ok := st.items[item.ItemID]; !ok {
			return fmt.Errorf("item_id: %w", errReference)
		}
		if item.SourceWarehouseID != nil {
			if _, ok := st.warehouses[*item.SourceWarehouseID]; !ok {
				return fmt.Errorf("source_warehouse_id: %w", errReference)
			}
		}
		for _, storeID := range []*int64{item.SourceStoreID, item.DestStoreID} {
			if storeID == nil {
				continue
			}
			if _, ok := st.stores[*storeID]; !ok {
				return fmt.Errorf("store_id: %w", errReference)
			}
		}
		if item.DestCustomerAddressID != nil {
			if _, ok := st.addresses[*item.DestCustomerAddressID]; !ok {
				return fmt.Errorf("dest_customer_address_id: %w", errReference)
			}
		}
	}
	return nil
}

func (r orderRepository) FindByID(ctx context.Context, orderID int64) (models.Order, error) {
	var found models.Order
	err := r.s.with(ctx, func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return repositories.NotFound("orders.find_by_id", errNotFound)
		}
		found = cloneOrder(o)
		return nil
	})
	return found, err
}

func (r orderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	var out []models.Order
	err := r.s.with(ctx, func(st *state) error {
		for _, o := range st.orders {
			if o.CustomerID == customerID {
				out = append(out, cloneOrder(o))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TimeOfOrder.Equal(out[j].TimeOfOrder) {
			return out[i].TimeOfOrder.Before(out[j].TimeOfOrder)
		}
		return out[i].OrderID < out[j].OrderID
	})
	return out, err
}

type reportRepository struct{ s *Store }

func (r reportRepository) CountOrdersByBillingZip(ctx context.Context) ([]models.ZipCount, error) {
	counts := map[string]int64{}
	err := r.s.with(ctx, func(st *state) error {
		for _, o := range st.orders {
			if a, ok := st.addresses[o.BillingAddressID]; ok {
				counts[a.ZipCode]++
			}
		}
		return nil
	})
	return zipCounts(counts), err
}

func (r reportRepository) CountOrdersByShippingZip(ctx context.Context, modalities []models.FulfillmentModality) ([]models.ZipCount, error) {
	orders := map[string]map[int64]struct{}{}
	err := r.s.with(ctx, func(st *state) error {
		for _, o := range st.orders {
			for _, item := range o.Items {
				if item.DestCustomerAddressID == nil || !slices.Contains(modalities, item.FulfillmentModality) {
					continue
				}
				a, ok := st.addresses[*item.DestCustomerAddressID]
				if !ok {
					continue
				}
				if orders[a.ZipCode] == nil {
					orders[a.ZipCode] = map[int64]struct{}{}
				}
				orders[a.ZipCode][o.OrderID] = struct{}{}
			}
		}
		return nil
	})
	counts := make(map[string]int64, len(orders))
	for zip, set := range orders {
		counts[zip] = int64(len(set))
	}
	return zipCounts(counts), err
}

func (r reportRepository) TopCustomersBySource(ctx context.Context, source models.OrderSource, limit int) ([]models.CustomerOrderCount, error) {
	counts := map[int64]int64{}
	err := r.s.with(ctx, func(st *state) error {
		for _, o := range st.orders {
			if o.Source == source {
				counts[o.CustomerID]++
			}
		}
		return nil
	})
	out := make([]models.CustomerOrderCount, 0, len(counts))
	for customerID, n := range counts {
		out = append(out, models.CustomerOrderCount{CustomerID: customerID, OrderCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderCount != out[j].OrderCount {
			return out[i].OrderCount > out[j].OrderCount
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func zipCounts(counts map[string]int64) []models.ZipCount {
	out := make([]models.ZipCount, 0, len(counts))
	for zip, n := range counts {
		out = append(out, models.ZipCount{ZipCode: zip, OrderCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderCount != out[j].OrderCount {
			return out[i].OrderCount > out[j].OrderCount
		}
		return out[i].ZipCode < out[j].ZipCode
	})
	return out
}

func containsAddress(addresses []models.CustomerAddress, id int64) bool {
	for _, a := range addresses {
		if a.CustomerAddressID == id {
			return true
		}
	}
	return false
}

func cloneOrder(o models.Order) models.Order {
	o.Items = slices.Clone(o.Items)
	o.Customer = nil
	o.BillingAddress = nil
	return o
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

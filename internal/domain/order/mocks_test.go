package order

import (
	"context"
	"sort"
	"sync"

	"github.com/nevtar/ordercore/internal/domain/product"
)

// --- Mock implementations shared by the package tests ---

type mockProductFinder struct {
	byID   map[string]*product.Product
	getErr error
	calls  int
}

func (m *mockProductFinder) GetByID(_ context.Context, id string) (*product.Product, error) {
	m.calls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func newProductFinder(products ...product.Product) *mockProductFinder {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockProductFinder{byID: byID}
}

// mockItemRepo is safe for concurrent use so tests can exercise racing
// writes against the same order.
type mockItemRepo struct {
	mu        sync.Mutex
	byID      map[string]*Item
	createErr error
	updateErr error
	deleteErr error
	listErr   error
}

func newItemRepo() *mockItemRepo {
	return &mockItemRepo{byID: make(map[string]*Item)}
}

func (m *mockItemRepo) Create(_ context.Context, it *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	cp := *it
	m.byID[it.ID] = &cp
	return nil
}

func (m *mockItemRepo) GetByID(_ context.Context, id string) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.byID[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *mockItemRepo) ListByOrder(_ context.Context, orderID string) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}
	var items []Item
	for _, it := range m.byID {
		if it.OrderID == orderID {
			items = append(items, *it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *mockItemRepo) Update(_ context.Context, it *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.byID[it.ID]; !ok {
		return ErrItemNotFound
	}
	cp := *it
	m.byID[it.ID] = &cp
	return nil
}

func (m *mockItemRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.byID[id]; !ok {
		return ErrItemNotFound
	}
	delete(m.byID, id)
	return nil
}

type mockOrderRepo struct {
	mu             sync.Mutex
	byID           map[string]*Order
	updateTotalErr error
	totals         []int64 // captured UpdateTotal values, in call order
}

func newOrderRepo(orders ...Order) *mockOrderRepo {
	byID := make(map[string]*Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}
	return &mockOrderRepo{byID: byID}
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var orders []Order
	for _, o := range m.byID {
		if o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *mockOrderRepo) UpdateTotal(_ context.Context, id string, totalCents int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateTotalErr != nil {
		return m.updateTotalErr
	}
	o, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.TotalCents = totalCents
	m.totals = append(m.totals, totalCents)
	return nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// --- Helpers ---

func ptrInt(v int) *int       { return &v }
func ptrInt64(v int64) *int64 { return &v }

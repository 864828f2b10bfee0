package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rl1809/tirehouse-pos/internal/core/domain"
)

// Mock CacheRepository
type mockCacheRepo struct {
	mu             sync.Mutex
	stock          map[string]int
	idempotencySet map[string]bool
	decrementErr   error
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		stock:          make(map[string]int),
		idempotencySet: make(map[string]bool),
	}
}

func (m *mockCacheRepo) DecrementStock(ctx context.Context, itemID string, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.decrementErr != nil {
		return false, m.decrementErr
	}
	current, ok := m.stock[itemID]
	if !ok {
		return true, nil // uncached, DB guard decides
	}
	if current >= quantity {
		m.stock[itemID] = current - quantity
		return true, nil
	}
	return false, nil
}

func (m *mockCacheRepo) IncrementStock(ctx context.Context, itemID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stock[itemID]; ok {
		m.stock[itemID] += quantity
	}
	return nil
}

func (m *mockCacheRepo) GetStock(ctx context.Context, itemID string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	qty, ok := m.stock[itemID]
	return qty, ok, nil
}

func (m *mockCacheRepo) SetStock(ctx context.Context, itemID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[itemID] = quantity
	return nil
}

func (m *mockCacheRepo) DeleteStock(ctx context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stock, itemID)
	return nil
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) stockOf(itemID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[itemID]
}

// Mock InventoryRepository
type mockInventoryRepo struct {
	mu    sync.Mutex
	items map[string]domain.Item
}

func newMockInventoryRepo(items ...domain.Item) *mockInventoryRepo {
	m := &mockInventoryRepo{items: make(map[string]domain.Item)}
	for _, it := range items {
		if !it.Active {
			it.Active = true
		}
		m.items[it.ID] = it
	}
	return m
}

func (m *mockInventoryRepo) ListItems(ctx context.Context) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Item
	for _, it := range m.items {
		if it.Active {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockInventoryRepo) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || !it.Active {
		return nil, domain.ErrNotFound
	}
	return &it, nil
}

func (m *mockInventoryRepo) GetItemByBarcode(ctx context.Context, barcode string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.Active && it.Barcode == barcode {
			return &it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockInventoryRepo) CreateItem(ctx context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *mockInventoryRepo) UpdateItem(ctx context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.items[item.ID]
	if !ok || !existing.Active {
		return domain.ErrNotFound
	}
	item.Active = true
	m.items[item.ID] = item
	return nil
}

func (m *mockInventoryRepo) DeactivateItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || !it.Active {
		return domain.ErrNotFound
	}
	it.Active = false
	m.items[id] = it
	return nil
}

func (m *mockInventoryRepo) AdjustQuantity(ctx context.Context, id string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || !it.Active {
		return 0, domain.ErrNotFound
	}
	next := it.Quantity + delta
	if next < 0 {
		return 0, &domain.InsufficientStockError{ItemID: id, Available: it.Quantity, Requested: -delta}
	}
	it.Quantity = next
	m.items[id] = it
	return next, nil
}

func (m *mockInventoryRepo) quantityOf(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Quantity
}

// Mock SalesRepository. CreateSale mirrors the real adapter: it applies all
// conditional decrements against the inventory mock or none of them.
type mockSalesRepo struct {
	mu        sync.Mutex
	inventory *mockInventoryRepo
	sales     []domain.Sale
	createErr error
}

func newMockSalesRepo(inventory *mockInventoryRepo) *mockSalesRepo {
	return &mockSalesRepo{inventory: inventory}
}

var errMockPersistence = errors.New("mock persistence failure")

func (m *mockSalesRepo) CreateSale(ctx context.Context, sale domain.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}

	applied := make([]domain.SaleItem, 0, len(sale.Items))
	for _, it := range sale.Items {
		if _, err := m.inventory.AdjustQuantity(ctx, it.ItemID, -it.Quantity); err != nil {
			for _, done := range applied {
				m.inventory.AdjustQuantity(ctx, done.ItemID, done.Quantity)
			}
			return err
		}
		applied = append(applied, it)
	}

	m.sales = append(m.sales, sale)
	return nil
}

func (m *mockSalesRepo) ListSales(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Sale
	for _, s := range m.sales {
		if !from.IsZero() && s.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && s.CreatedAt.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockSalesRepo) saleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sales)
}

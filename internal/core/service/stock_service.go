package service

import (
	"context"
	"fmt"
	"log"

	"github.com/rl1809/tirehouse-pos/internal/core/domain"
	"github.com/rl1809/tirehouse-pos/internal/port"
)

// StockService is the stock ledger: reads and conditional quantity changes
// for the inventory, with the database as source of truth and the cache as
// the fast path for reserve checks.
type StockService struct {
	inventory port.InventoryRepository
	cache     port.CacheRepository
}

func NewStockService(inventory port.InventoryRepository, cache port.CacheRepository) *StockService {
	return &StockService{inventory: inventory, cache: cache}
}

// GetQuantity returns the current on-hand quantity for an active item.
func (s *StockService) GetQuantity(ctx context.Context, itemID string) (int, error) {
	item, err := s.inventory.GetItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return item.Quantity, nil
}

// ReserveCheck reports whether requested units are available right now.
// Pure read, no side effect; used for feedback while building a cart.
func (s *StockService) ReserveCheck(ctx context.Context, itemID string, requested int) (bool, error) {
	if qty, ok, err := s.cache.GetStock(ctx, itemID); err == nil && ok {
		return requested <= qty, nil
	}

	qty, err := s.GetQuantity(ctx, itemID)
	if err != nil {
		return false, err
	}
	return requested <= qty, nil
}

// Decrement atomically reduces stock by qty and returns the new quantity.
// Fails with InsufficientStockError when the result would go negative.
func (s *StockService) Decrement(ctx context.Context, itemID string, qty int) (int, error) {
	newQty, err := s.inventory.AdjustQuantity(ctx, itemID, -qty)
	if err != nil {
		return 0, err
	}
	s.refreshCache(ctx, itemID, newQty)
	return newQty, nil
}

// Increment raises stock by qty (restock path).
func (s *StockService) Increment(ctx context.Context, itemID string, qty int) (int, error) {
	newQty, err := s.inventory.AdjustQuantity(ctx, itemID, qty)
	if err != nil {
		return 0, err
	}
	s.refreshCache(ctx, itemID, newQty)
	return newQty, nil
}

// LookupByBarcode resolves an active item from a scanned code.
func (s *StockService) LookupByBarcode(ctx context.Context, barcode string) (*domain.Item, error) {
	return s.inventory.GetItemByBarcode(ctx, barcode)
}

// SyncCache pushes all active quantities into the cache. Run at startup so
// the Lua compare-and-decrement sees real numbers from the first checkout.
func (s *StockService) SyncCache(ctx context.Context) error {
	items, err := s.inventory.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	for _, it := range items {
		if err := s.cache.SetStock(ctx, it.ID, it.Quantity); err != nil {
			return fmt.Errorf("set stock %s: %w", it.ID, err)
		}
	}
	return nil
}

func (s *StockService) refreshCache(ctx context.Context, itemID string, qty int) {
	if err := s.cache.SetStock(ctx, itemID, qty); err != nil {
		log.Printf("stock cache refresh failed for %s: %v", itemID, err)
	}
}

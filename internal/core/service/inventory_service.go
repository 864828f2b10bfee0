package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/tirehouse-pos/internal/core/domain"
	"github.com/rl1809/tirehouse-pos/internal/port"
)

// InventoryService owns item CRUD. Quantity changes made here go through the
// same conditional update as checkout, and the stock cache is kept in step so
// reserve checks see edits immediately.
type InventoryService struct {
	inventory port.InventoryRepository
	cache     port.CacheRepository
	now       func() time.Time
}

func NewInventoryService(inventory port.InventoryRepository, cache port.CacheRepository) *InventoryService {
	return &InventoryService{inventory: inventory, cache: cache, now: time.Now}
}

func (s *InventoryService) List(ctx context.Context) ([]domain.Item, error) {
	return s.inventory.ListItems(ctx)
}

func (s *InventoryService) Get(ctx context.Context, id string) (*domain.Item, error) {
	return s.inventory.GetItem(ctx, id)
}

func (s *InventoryService) Create(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if err := validateItem(&item); err != nil {
		return nil, err
	}

	now := s.now()
	item.ID = uuid.New().String()
	item.Active = true
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.inventory.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.refreshCache(ctx, item.ID, item.Quantity)
	return &item, nil
}

func (s *InventoryService) Update(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if item.ID == "" {
		return nil, fmt.Errorf("%w: id required", domain.ErrValidation)
	}
	if err := validateItem(&item); err != nil {
		return nil, err
	}

	item.UpdatedAt = s.now()
	if err := s.inventory.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.refreshCache(ctx, item.ID, item.Quantity)
	return &item, nil
}

func (s *InventoryService) Deactivate(ctx context.Context, id string) error {
	if err := s.inventory.DeactivateItem(ctx, id); err != nil {
		return err
	}
	if err := s.cache.DeleteStock(ctx, id); err != nil {
		log.Printf("stock cache delete failed for %s: %v", id, err)
	}
	return nil
}

func validateItem(item *domain.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	item.Barcode = strings.TrimSpace(item.Barcode)
	item.Category = strings.TrimSpace(item.Category)

	if item.Name == "" {
		return fmt.Errorf("%w: name required", domain.ErrValidation)
	}
	if item.Barcode == "" {
		return fmt.Errorf("%w: barcode required", domain.ErrValidation)
	}
	if item.Category == "" {
		return fmt.Errorf("%w: category required", domain.ErrValidation)
	}
	if item.PriceCents < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if item.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
	}
	if item.MinStock < 0 {
		return fmt.Errorf("%w: min stock must not be negative", domain.ErrValidation)
	}
	if item.MinStock == 0 {
		item.MinStock = domain.DefaultMinStock
	}
	return nil
}

func (s *InventoryService) refreshCache(ctx context.Context, itemID string, qty int) {
	if err := s.cache.SetStock(ctx, itemID, qty); err != nil {
		log.Printf("stock cache refresh failed for %s: %v", itemID, err)
	}
}

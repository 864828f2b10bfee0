package port

import (
	"context"
	"time"

	"github.com/rl1809/tirehouse-pos/internal/core/domain"
)

type InventoryRepository interface {
	// ListItems returns all active items, newest first.
	ListItems(ctx context.Context) ([]domain.Item, error)

	// GetItem returns an active item or domain.ErrNotFound.
	GetItem(ctx context.Context, id string) (*domain.Item, error)

	// GetItemByBarcode returns the active item carrying the barcode or domain.ErrNotFound.
	GetItemByBarcode(ctx context.Context, barcode string) (*domain.Item, error)

	// CreateItem persists a new item.
	CreateItem(ctx context.Context, item domain.Item) error

	// UpdateItem rewrites an item's mutable fields and bumps last-modified.
	UpdateItem(ctx context.Context, item domain.Item) error

	// DeactivateItem soft-deletes an item; past sales keep their snapshots.
	DeactivateItem(ctx context.Context, id string) error

	// AdjustQuantity applies a signed delta as a conditional atomic update
	// (never below zero) and returns the new quantity.
	AdjustQuantity(ctx context.Context, id string, delta int) (int, error)
}

type SalesRepository interface {
	// CreateSale persists the sale, its item snapshots, and the matching
	// stock decrements as one all-or-nothing transaction.
	CreateSale(ctx context.Context, sale domain.Sale) error

	// ListSales returns sales within [from, to], newest first. Zero bounds
	// are open-ended.
	ListSales(ctx context.Context, from, to time.Time) ([]domain.Sale, error)
}

type SettingsRepository interface {
	// GetSettings returns stored settings, or defaults when none exist.
	GetSettings(ctx context.Context) (domain.Settings, error)

	// UpdateSettings upserts the single settings row.
	UpdateSettings(ctx context.Context, s domain.Settings) error
}

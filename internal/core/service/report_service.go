package service

import (
	"context"
	"sort"
	"time"

	"github.com/rl1809/tirehouse-pos/internal/core/domain"
	"github.com/rl1809/tirehouse-pos/internal/port"
)

// ReportService answers dashboard queries over committed sales and current
// inventory. Reads only; results may trail an in-flight checkout.
type ReportService struct {
	inventory port.InventoryRepository
	sales     port.SalesRepository
}

func NewReportService(inventory port.InventoryRepository, sales port.SalesRepository) *ReportService {
	return &ReportService{inventory: inventory, sales: sales}
}

type SalesSummary struct {
	Count        int
	RevenueCents domain.Cents
	AverageCents domain.Cents
}

type ItemSales struct {
	ItemID       string
	Name         string
	QuantitySold int
	RevenueCents domain.Cents
}

type CategoryStats struct {
	Category   string
	Quantity   int
	ValueCents domain.Cents
}

// Sales returns committed sale history within [from, to], newest first.
func (r *ReportService) Sales(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	return r.sales.ListSales(ctx, from, to)
}

// Summary aggregates sales within [from, to]. An empty range yields zeros.
func (r *ReportService) Summary(ctx context.Context, from, to time.Time) (SalesSummary, error) {
	sales, err := r.sales.ListSales(ctx, from, to)
	if err != nil {
		return SalesSummary{}, err
	}

	var sum SalesSummary
	for _, s := range sales {
		sum.Count++
		sum.RevenueCents += s.TotalCents
	}
	if sum.Count > 0 {
		sum.AverageCents = sum.RevenueCents / domain.Cents(sum.Count)
	}
	return sum, nil
}

// TopSellingItems ranks items by units sold within the range, ties broken by
// revenue, then name for stable output.
func (r *ReportService) TopSellingItems(ctx context.Context, from, to time.Time, limit int) ([]ItemSales, error) {
	sales, err := r.sales.ListSales(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byItem := make(map[string]*ItemSales)
	for _, s := range sales {
		for _, it := range s.Items {
			entry, ok := byItem[it.ItemID]
			if !ok {
				entry = &ItemSales{ItemID: it.ItemID, Name: it.Name}
				byItem[it.ItemID] = entry
			}
			entry.QuantitySold += it.Quantity
			entry.RevenueCents += it.SubtotalCents()
		}
	}

	ranked := make([]ItemSales, 0, len(byItem))
	for _, e := range byItem {
		ranked = append(ranked, *e)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].QuantitySold != ranked[j].QuantitySold {
			return ranked[i].QuantitySold > ranked[j].QuantitySold
		}
		if ranked[i].RevenueCents != ranked[j].RevenueCents {
			return ranked[i].RevenueCents > ranked[j].RevenueCents
		}
		return ranked[i].Name < ranked[j].Name
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// LowStockItems lists active items at or below their restock threshold.
func (r *ReportService) LowStockItems(ctx context.Context) ([]domain.Item, error) {
	items, err := r.inventory.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]domain.Item, 0)
	for _, it := range items {
		if it.LowStock() {
			low = append(low, it)
		}
	}
	return low, nil
}

// CategoryBreakdown totals on-hand quantity and stock value per category.
func (r *ReportService) CategoryBreakdown(ctx context.Context) ([]CategoryStats, error) {
	items, err := r.inventory.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*CategoryStats)
	for _, it := range items {
		entry, ok := byCategory[it.Category]
		if !ok {
			entry = &CategoryStats{Category: it.Category}
			byCategory[it.Category] = entry
		}
		entry.Quantity += it.Quantity
		entry.ValueCents += it.PriceCents * domain.Cents(it.Quantity)
	}

	stats := make([]CategoryStats, 0, len(byCategory))
	for _, e := range byCategory {
		stats = append(stats, *e)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Category < stats[j].Category })
	return stats, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/tirehouse-pos/internal/core/domain"
	"github.com/rl1809/tirehouse-pos/internal/port"
)

var ErrDuplicateRequest = errors.New("duplicate request")

type CustomerInfo struct {
	Name  string
	Phone string

	// RequestID, when set, deduplicates a re-submitted confirmation.
	RequestID string

	Cashier string
}

// CheckoutService turns a cart into a committed sale. The decrement order is
// optimistic: cached stock is taken first per line (atomic guard against
// negative stock), then the sale plus the database decrements are persisted
// in one transaction. Any failure after a cache decrement rolls that
// decrement back before the error surfaces, so a failed checkout leaves
// stock exactly where it started.
type CheckoutService struct {
	sales port.SalesRepository
	cache port.CacheRepository
	bills billNumberGenerator
	now   func() time.Time
}

func NewCheckoutService(sales port.SalesRepository, cache port.CacheRepository) *CheckoutService {
	return &CheckoutService{
		sales: sales,
		cache: cache,
		now:   time.Now,
	}
}

func (s *CheckoutService) Checkout(ctx context.Context, cart *domain.Cart, info CustomerInfo) (*domain.Sale, error) {
	if cart == nil {
		return nil, domain.ErrEmptyCart
	}
	if cart.Status() != domain.CartOpen {
		return nil, domain.ErrCartClosed
	}
	if !cart.CanCheckout() {
		return nil, domain.ErrEmptyCart
	}

	if info.RequestID != "" {
		ok, err := s.cache.SetIdempotency(ctx, "checkout:"+info.RequestID)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	lines := cart.Lines()

	// Re-validate and take stock per line, atomically. The quantity seen at
	// add-to-cart time is stale by now; only the compare-and-decrement
	// decides.
	applied := make([]domain.CartLine, 0, len(lines))
	for _, line := range lines {
		ok, err := s.cache.DecrementStock(ctx, line.ItemID, line.Quantity)
		if err != nil {
			s.rollback(ctx, applied)
			return nil, fmt.Errorf("stock decrement failed: %w", err)
		}
		if !ok {
			available, _, _ := s.cache.GetStock(ctx, line.ItemID)
			s.rollback(ctx, applied)
			return nil, &domain.InsufficientStockError{
				ItemID:    line.ItemID,
				Available: available,
				Requested: line.Quantity,
			}
		}
		applied = append(applied, line)
	}

	now := s.now()
	sale := domain.Sale{
		ID:                uuid.New().String(),
		BillNumber:        s.bills.Next(now),
		CustomerName:      info.Name,
		CustomerPhone:     info.Phone,
		RepairFeeCents:    cart.AdjustmentCents(),
		RepairDescription: cart.AdjustmentDescription(),
		Cashier:           info.Cashier,
		CreatedAt:         now,
	}
	if sale.CustomerName == "" {
		sale.CustomerName = domain.DefaultCustomerName
	}
	if sale.Cashier == "" {
		sale.Cashier = domain.DefaultCashier
	}
	for _, line := range lines {
		sale.Items = append(sale.Items, domain.SaleItem{
			ItemID:     line.ItemID,
			Name:       line.Name,
			PriceCents: line.PriceCents,
			Quantity:   line.Quantity,
		})
	}
	sale.TotalCents = sale.ComputeTotal()

	// The transaction is the final guard: it re-checks every quantity with a
	// conditional update and either commits sale, snapshots and decrements
	// together or none of them.
	if err := s.sales.CreateSale(ctx, sale); err != nil {
		s.rollback(ctx, applied)
		if domain.IsInsufficientStock(err) {
			return nil, err
		}
		return nil, fmt.Errorf("persist sale: %w", err)
	}

	cart.Commit()
	return &sale, nil
}

// rollback restores cached stock for decrements already applied in this
// checkout. The database saw nothing yet, so this returns the system to its
// pre-checkout state.
func (s *CheckoutService) rollback(ctx context.Context, applied []domain.CartLine) {
	for _, line := range applied {
		if err := s.cache.IncrementStock(ctx, line.ItemID, line.Quantity); err != nil {
			log.Printf("CRITICAL: stock rollback failed for item %s qty %d: %v", line.ItemID, line.Quantity, err)
		}
	}
}

package domain

import "time"

const (
	DefaultCustomerName = "Walk-in Customer"
	DefaultCashier      = "Admin"
)

// SaleItem is an immutable snapshot of one sold line. It keeps the item's
// name and price as they were at checkout, independent of later edits.
type SaleItem struct {
	ItemID     string
	Name       string
	PriceCents Cents
	Quantity   int
}

func (si SaleItem) SubtotalCents() Cents {
	return si.PriceCents * Cents(si.Quantity)
}

// Sale is committed history. Once persisted it is never mutated or deleted.
type Sale struct {
	ID                string
	BillNumber        string
	CustomerName      string
	CustomerPhone     string
	Items             []SaleItem
	RepairFeeCents    Cents
	RepairDescription string
	TotalCents        Cents
	Cashier           string
	CreatedAt         time.Time
}

// ComputeTotal recomputes the sale total from its lines and repair fee.
// Sale.TotalCents must equal this at creation time.
func (s Sale) ComputeTotal() Cents {
	total := s.RepairFeeCents
	for _, it := range s.Items {
		total += it.SubtotalCents()
	}
	return total
}

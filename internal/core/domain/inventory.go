package domain

import "time"

const DefaultMinStock = 5

// Item is one stocked product (tire, tube, oil). Barcode is the unique
// business key among active items; Quantity is never negative.
type Item struct {
	ID          string
	Name        string
	Brand       string
	Barcode     string
	Category    string
	SubCategory string
	TireSize    string
	PriceCents  Cents
	Quantity    int
	MinStock    int
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LowStock reports whether the item is at or below its restock threshold.
func (i Item) LowStock() bool {
	min := i.MinStock
	if min <= 0 {
		min = DefaultMinStock
	}
	return i.Quantity <= min
}

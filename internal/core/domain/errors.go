package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("item not found")
	ErrValidation = errors.New("invalid input")

	// ErrBarcodeTaken signals a create/update colliding with another active
	// item's barcode.
	ErrBarcodeTaken = errors.New("barcode already in use")
	ErrEmptyCart    = errors.New("cart has no items and no adjustment")
	ErrCartClosed   = errors.New("cart already committed or cancelled")
)

// InsufficientStockError reports a line that asked for more units than the
// ledger holds. Available is the quantity at the moment of the check.
type InsufficientStockError struct {
	ItemID    string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %d, available %d", e.ItemID, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err carries an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

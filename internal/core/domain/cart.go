package domain

// CartStatus tracks the cart's lifecycle. A cart is built in memory for one
// checkout session and discarded afterwards; nothing here touches storage.
type CartStatus string

const (
	CartOpen      CartStatus = "open"
	CartCommitted CartStatus = "committed"
	CartCancelled CartStatus = "cancelled"
)

// CartLine pairs an item reference with a requested quantity. The name,
// price and other display fields are snapshots taken when the line was
// added; StockSeen is the item quantity known at that moment and only bounds
// the line locally — checkout re-validates against live stock.
type CartLine struct {
	ItemID     string
	Name       string
	Brand      string
	Barcode    string
	TireSize   string
	PriceCents Cents
	Quantity   int
	StockSeen  int
}

// Cart accumulates lines and an optional signed adjustment (repair fee)
// before checkout. Not safe for concurrent use; one cart per session.
type Cart struct {
	lines           []CartLine
	adjustmentCents Cents
	adjustmentDesc  string
	status          CartStatus
}

func NewCart() *Cart {
	return &Cart{status: CartOpen}
}

func (c *Cart) Status() CartStatus { return c.status }

// AddLine adds qty units of item, merging into an existing line for the same
// item. Returns InsufficientStockError when the merged quantity would exceed
// the stock known for the item.
func (c *Cart) AddLine(item Item, qty int) error {
	if c.status != CartOpen {
		return ErrCartClosed
	}
	if qty < 1 {
		qty = 1
	}

	for i := range c.lines {
		if c.lines[i].ItemID != item.ID {
			continue
		}
		next := c.lines[i].Quantity + qty
		if next > item.Quantity {
			return &InsufficientStockError{ItemID: item.ID, Available: item.Quantity, Requested: next}
		}
		c.lines[i].Quantity = next
		c.lines[i].StockSeen = item.Quantity
		return nil
	}

	if qty > item.Quantity {
		return &InsufficientStockError{ItemID: item.ID, Available: item.Quantity, Requested: qty}
	}
	c.lines = append(c.lines, CartLine{
		ItemID:     item.ID,
		Name:       item.Name,
		Brand:      item.Brand,
		Barcode:    item.Barcode,
		TireSize:   item.TireSize,
		PriceCents: item.PriceCents,
		Quantity:   qty,
		StockSeen:  item.Quantity,
	})
	return nil
}

// SetLineQuantity replaces the quantity of an existing line. qty <= 0
// removes the line.
func (c *Cart) SetLineQuantity(itemID string, qty int) error {
	if c.status != CartOpen {
		return ErrCartClosed
	}
	if qty <= 0 {
		c.RemoveLine(itemID)
		return nil
	}
	for i := range c.lines {
		if c.lines[i].ItemID != itemID {
			continue
		}
		if qty > c.lines[i].StockSeen {
			return &InsufficientStockError{ItemID: itemID, Available: c.lines[i].StockSeen, Requested: qty}
		}
		c.lines[i].Quantity = qty
		return nil
	}
	return ErrNotFound
}

func (c *Cart) RemoveLine(itemID string) {
	if c.status != CartOpen {
		return
	}
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetAdjustment sets the signed repair fee (negative means discount).
func (c *Cart) SetAdjustment(amount Cents, description string) error {
	if c.status != CartOpen {
		return ErrCartClosed
	}
	c.adjustmentCents = amount
	c.adjustmentDesc = description
	return nil
}

func (c *Cart) AdjustmentCents() Cents        { return c.adjustmentCents }
func (c *Cart) AdjustmentDescription() string { return c.adjustmentDesc }

// Lines returns a copy; callers cannot mutate cart state through it.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalCents is sum(price*qty) over all lines plus the adjustment.
func (c *Cart) TotalCents() Cents {
	total := c.adjustmentCents
	for _, l := range c.lines {
		total += l.PriceCents * Cents(l.Quantity)
	}
	return total
}

// CanCheckout reports whether the cart may proceed to checkout: at least one
// line, or a repair-only sale with a non-zero adjustment.
func (c *Cart) CanCheckout() bool {
	return c.status == CartOpen && (len(c.lines) > 0 || c.adjustmentCents != 0)
}

// Commit marks the cart consumed by a successful checkout.
func (c *Cart) Commit() { c.status = CartCommitted }

// Cancel discards the cart. No stock was touched while building it, so
// cancellation has no side effects.
func (c *Cart) Cancel() { c.status = CartCancelled }

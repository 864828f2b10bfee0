package port

import "context"

type CacheRepository interface {
	// DecrementStock atomically decreases cached stock, returns false if insufficient.
	DecrementStock(ctx context.Context, itemID string, quantity int) (bool, error)

	// IncrementStock restores stock (for rollback on failure).
	IncrementStock(ctx context.Context, itemID string, quantity int) error

	// GetStock returns the cached quantity; ok is false when the key is absent.
	GetStock(ctx context.Context, itemID string) (int, bool, error)

	// SetStock overwrites the cached quantity (startup sync, CRUD refresh).
	SetStock(ctx context.Context, itemID string, quantity int) error

	// DeleteStock drops the cached quantity for a deactivated item.
	DeleteStock(ctx context.Context, itemID string) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists.
	SetIdempotency(ctx context.Context, key string) (bool, error)
}

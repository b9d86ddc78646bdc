package orders

import "context"

// Repository is the write port the webhook service depends on.
// Implementations must be safe for concurrent use and must either apply the
// whole record or fail without touching the stored one.
type Repository interface {
	RegisterOrUpdate(ctx context.Context, order Order) error
}

// Finder reads a single order back. Returns ErrNotFound on a miss.
type Finder interface {
	Get(ctx context.Context, id uint32) (Order, error)
}

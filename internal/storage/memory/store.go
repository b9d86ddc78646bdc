// Package memory is a volatile, in-process order store. Nothing survives a
// restart; it backs local runs and tests.
package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-webhook-orderflow/internal/orders"
)

// Store keeps one order per id behind a single lock.
type Store struct {
	mu     sync.RWMutex
	orders map[uint32]orders.Order
	logger *zap.Logger
}

// NewStore returns a store seeded with a sample order (101, PENDIENTE, 50.00).
func NewStore(logger *zap.Logger) *Store {
	s := NewEmptyStore(logger)
	s.orders[101] = orders.Order{ID: 101, Status: "PENDIENTE", Amount: 50.00}
	return s
}

// NewEmptyStore returns a store with no orders.
func NewEmptyStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		orders: make(map[uint32]orders.Order),
		logger: logger,
	}
}

// RegisterOrUpdate inserts the order or overwrites the one with the same id.
func (s *Store) RegisterOrUpdate(ctx context.Context, order orders.Order) error {
	// a cancelled caller must not end up with a write it gave up on
	if err := ctx.Err(); err != nil {
		return orders.NewInternalError("memory.register", err)
	}

	s.mu.Lock()
	s.orders[order.ID] = order
	total := len(s.orders)
	s.mu.Unlock()

	s.logger.Debug("order registered",
		zap.String("store", "memory"),
		zap.Uint32("order_id", order.ID),
		zap.Int("orders", total),
	)
	return nil
}

// Get returns the order stored under id.
func (s *Store) Get(ctx context.Context, id uint32) (orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

// Len reports how many orders are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

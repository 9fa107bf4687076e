package trading

import (
	"sync"

	"github.com/tradeview/paper-trading-api/internal/types"
)

// Journal is the append-only record of executed orders. It grows unbounded
// for the process lifetime; entries are never mutated or deleted.
type Journal struct {
	mu     sync.RWMutex
	orders []types.Order
}

// NewJournal creates an empty order journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Append records an executed order. It always succeeds.
func (j *Journal) Append(order types.Order) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.orders = append(j.orders, order)
}

// ListByUser returns a user's orders in insertion order. An unknown user
// yields an empty list.
func (j *Journal) ListByUser(userID string) []types.Order {
	j.mu.RLock()
	defer j.mu.RUnlock()

	orders := make([]types.Order, 0)
	for _, order := range j.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders
}

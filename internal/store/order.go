package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/efreitasn/orderdesk/internal/domain"
)

// OrderStore is a thread-safe in-memory store for orders,
// with a primary index by order_id and a secondary index by user_id.
type OrderStore struct {
	mu         sync.RWMutex
	orders     map[string]*domain.Order
	userOrders map[string][]*domain.Order // user_id → orders (append-only)
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:     make(map[string]*domain.Order),
		userOrders: make(map[string][]*domain.Order),
	}
}

// Create adds an order to the store and appends it to the
// user's secondary index. Orders are write-once.
func (s *OrderStore) Create(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.OrderID]; exists {
		return fmt.Errorf("order %s already exists", o.OrderID)
	}
	s.orders[o.OrderID] = o
	s.userOrders[o.UserID] = append(s.userOrders[o.UserID], o)
	return nil
}

// Get retrieves an order by ID. It returns
// domain.ErrOrderNotFound if the order does not exist.
func (s *OrderStore) Get(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// ListByUser returns a user's orders newest first. Pagination is 1-based.
// It returns the requested page and the total number of orders.
func (s *OrderStore) ListByUser(_ context.Context, userID string, page, limit int) ([]*domain.Order, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.userOrders[userID]
	total := len(all)

	// Checked before multiplying so huge pages cannot overflow.
	if page < 1 || limit < 1 || page-1 > total/limit {
		return []*domain.Order{}, total, nil
	}
	start := (page - 1) * limit
	if start >= total {
		return []*domain.Order{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	// all is chronological; walk it backwards.
	result := make([]*domain.Order, 0, end-start)
	for i := total - 1 - start; i >= total-end; i-- {
		result = append(result, all[i])
	}
	return result, total, nil
}

package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/efreitasn/orderdesk/internal/engine"
	"github.com/efreitasn/orderdesk/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCatalog(t *testing.T) *store.CatalogStore {
	t.Helper()
	c := store.NewCatalogStore()
	err := c.Put(context.Background(), &domain.Menu{
		MenuID: "coffee",
		Name:   "Coffee",
		Items: []domain.Item{
			{
				ItemID: "latte",
				Name:   "Latte",
				Price:  400,
				Options: []domain.Option{
					{Name: "Size", Choices: []domain.Choice{{Name: "Small"}, {Name: "Large", PriceDelta: 150}}},
				},
			},
			{ItemID: "espresso", Name: "Espresso", Price: 250},
		},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	return c
}

// countingOrderStore records every write attempt.
type countingOrderStore struct {
	*store.OrderStore
	writes atomic.Int64
	err    error
}

func (s *countingOrderStore) Create(ctx context.Context, o *domain.Order) error {
	s.writes.Add(1)
	if s.err != nil {
		return s.err
	}
	return s.OrderStore.Create(ctx, o)
}

// recordingNotifier collects published orders.
type recordingNotifier struct {
	mu     sync.Mutex
	orders []string
	done   chan struct{}
	err    error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 16)}
}

func (n *recordingNotifier) PublishOrderPlaced(_ context.Context, o *domain.Order) error {
	n.mu.Lock()
	n.orders = append(n.orders, o.OrderID)
	n.mu.Unlock()
	n.done <- struct{}{}
	return n.err
}

func (n *recordingNotifier) wait(t *testing.T) {
	t.Helper()
	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for order.placed notification")
	}
}

func newTestOrderService(t *testing.T, orders OrderStore, notifier OrderNotifier) *OrderService {
	t.Helper()
	pricer := engine.NewPricer(newTestCatalog(t), time.Second)
	return NewOrderService(pricer, orders, notifier, time.Second, discardLogger())
}

var errDiskFull = errors.New("disk full")

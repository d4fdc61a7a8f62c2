package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/efreitasn/orderdesk/internal/engine"
	"github.com/google/uuid"
)

const maxOrderLines = 100

// OrderStore is the persistence side of orders.
type OrderStore interface {
	Create(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]*domain.Order, int, error)
}

// OrderNotifier is told about every committed order.
type OrderNotifier interface {
	PublishOrderPlaced(ctx context.Context, o *domain.Order) error
}

// PlaceOrderRequest represents the input for placing an order.
type PlaceOrderRequest struct {
	UserID string
	Lines  []domain.OrderLineRequest
}

// OrderService prices, commits and reads orders.
type OrderService struct {
	pricer        *engine.Pricer
	orders        OrderStore
	notifier      OrderNotifier
	commitTimeout time.Duration
	logger        *slog.Logger
}

// NewOrderService creates a new OrderService. notifier may be nil.
func NewOrderService(
	pricer *engine.Pricer,
	orders OrderStore,
	notifier OrderNotifier,
	commitTimeout time.Duration,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		pricer:        pricer,
		orders:        orders,
		notifier:      notifier,
		commitTimeout: commitTimeout,
		logger:        logger,
	}
}

// PlaceOrder validates the request, prices every line and persists the
// order. Nothing is written unless every line resolved. A persistence
// failure is returned as a *domain.StoreError.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	if err := validatePlaceOrder(req); err != nil {
		return nil, err
	}

	order, err := s.pricer.PriceOrder(ctx, req.UserID, req.Lines)
	if err != nil {
		return nil, err
	}

	order.OrderID = uuid.New().String()
	order.CreatedAt = time.Now().UTC()

	if err := s.commit(ctx, order); err != nil {
		s.logger.Error("order commit failed",
			slog.String("order_id", order.OrderID),
			slog.String("user_id", order.UserID),
			slog.String("error", err.Error()),
		)
		return nil, &domain.StoreError{Op: "create order", Err: err}
	}

	s.logger.Info("order placed",
		slog.String("order_id", order.OrderID),
		slog.String("user_id", order.UserID),
		slog.Int("lines", len(order.Lines)),
		slog.String("total", order.Total.String()),
	)

	if s.notifier != nil {
		// Fire-and-forget; the order is already durable.
		go s.notifyPlaced(context.WithoutCancel(ctx), order)
	}

	return order, nil
}

func (s *OrderService) commit(ctx context.Context, order *domain.Order) error {
	if s.commitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.commitTimeout)
		defer cancel()
	}
	return s.orders.Create(ctx, order)
}

func (s *OrderService) notifyPlaced(ctx context.Context, order *domain.Order) {
	if err := s.notifier.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.Warn("order.placed publish failed",
			slog.String("order_id", order.OrderID),
			slog.String("error", err.Error()),
		)
	}
}

func validatePlaceOrder(req PlaceOrderRequest) error {
	if req.UserID == "" {
		return &domain.ValidationError{Message: "userId is required"}
	}
	if len(req.Lines) == 0 {
		return &domain.ValidationError{Message: "items must be a non-empty array"}
	}
	if len(req.Lines) > maxOrderLines {
		return &domain.ValidationError{
			Message: fmt.Sprintf("items must contain at most %d entries", maxOrderLines),
		}
	}
	for i, l := range req.Lines {
		if l.MenuID == "" {
			return &domain.ValidationError{Message: fmt.Sprintf("items[%d].menu is required", i)}
		}
		if l.ItemID == "" {
			return &domain.ValidationError{Message: fmt.Sprintf("items[%d].item is required", i)}
		}
		if l.Quantity <= 0 {
			return &domain.ValidationError{Message: fmt.Sprintf("items[%d].quantity must be a positive integer", i)}
		}
	}
	return nil
}

// GetOrder returns an order owned by userID. Orders of other users are
// reported as domain.ErrForbidden.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// ListOrders returns a page of a user's orders, newest first, and the
// total count.
func (s *OrderService) ListOrders(ctx context.Context, userID string, page, limit int) ([]*domain.Order, int, error) {
	if page < 1 {
		return nil, 0, &domain.ValidationError{Message: "page must be >= 1"}
	}
	if limit < 1 || limit > 100 {
		return nil, 0, &domain.ValidationError{Message: "limit must be between 1 and 100"}
	}
	if page > math.MaxInt/limit {
		return nil, 0, &domain.ValidationError{Message: "page is too large"}
	}
	return s.orders.ListByUser(ctx, userID, page, limit)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/efreitasn/orderdesk/internal/service"
	"github.com/go-chi/chi/v5"
)

const timeLayout = "2006-01-02T15:04:05Z"

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// placeOrderRequest is the JSON request body for POST /order.
type placeOrderRequest struct {
	UserID string             `json:"userId"`
	Items  []orderLineRequest `json:"items"`
}

// orderLineRequest is one entry of items. Options holds choice names.
type orderLineRequest struct {
	Menu     string   `json:"menu"`
	Item     string   `json:"item"`
	Options  []string `json:"options"`
	Quantity int64    `json:"quantity"`
}

type placeOrderResponse struct {
	Message string `json:"message"`
	OrderID string `json:"orderId"`
}

// orderResponse is a persisted order.
type orderResponse struct {
	OrderID   string              `json:"orderId"`
	UserID    string              `json:"userId"`
	Items     []orderLineResponse `json:"items"`
	Total     float64             `json:"total"`
	CreatedAt string              `json:"createdAt"`
}

type orderLineResponse struct {
	Menu           string   `json:"menu"`
	Item           string   `json:"item"`
	Name           string   `json:"name"`
	Options        []string `json:"options"`
	MatchedOptions []string `json:"matchedOptions"`
	Quantity       int64    `json:"quantity"`
	BasePrice      float64  `json:"basePrice"`
	Price          float64  `json:"price"`
}

// orderListResponse is the JSON response for GET /me/orders.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// PlaceOrder handles POST /order.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := ParseJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	lines := make([]domain.OrderLineRequest, len(req.Items))
	for i, it := range req.Items {
		lines[i] = domain.OrderLineRequest{
			MenuID:   it.Menu,
			ItemID:   it.Item,
			Choices:  it.Options,
			Quantity: it.Quantity,
		}
	}

	order, err := h.orderSvc.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		UserID: req.UserID,
		Lines:  lines,
	})
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, placeOrderResponse{
		Message: "Order placed successfully",
		OrderID: order.OrderID,
	})
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderSvc.GetOrder(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "order_id"))
	if err != nil {
		mapOrderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// ListOrders handles GET /me/orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		var err error
		page, err = strconv.Atoi(p)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "page must be a valid integer")
			return
		}
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a valid integer")
			return
		}
	}

	orders, total, err := h.orderSvc.ListOrders(r.Context(), userIDFrom(r.Context()), page, limit)
	if err != nil {
		mapOrderError(w, err)
		return
	}

	resp := orderListResponse{
		Orders: make([]orderResponse, len(orders)),
		Total:  total,
		Page:   page,
		Limit:  limit,
	}
	for i, o := range orders {
		resp.Orders[i] = buildOrderResponse(o)
	}
	WriteJSON(w, http.StatusOK, resp)
}

func buildOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = orderLineResponse{
			Menu:           l.MenuID,
			Item:           l.ItemID,
			Name:           l.ItemName,
			Options:        nonNil(l.Choices),
			MatchedOptions: nonNil(l.MatchedChoices),
			Quantity:       l.Quantity,
			BasePrice:      l.BasePrice.Dollars(),
			Price:          l.Contribution.Dollars(),
		}
	}
	return orderResponse{
		OrderID:   o.OrderID,
		UserID:    o.UserID,
		Items:     items,
		Total:     o.Total.Dollars(),
		CreatedAt: o.CreatedAt.UTC().Format(timeLayout),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// mapOrderError maps domain errors to HTTP responses for order endpoints.
// Resolution failures are client errors; catalog outages are 503 and
// persistence failures 500.
func mapOrderError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	var storeErr *domain.StoreError
	if errors.As(err, &storeErr) {
		WriteError(w, http.StatusInternalServerError, "store_write_failure", "Failed to save order")
		return
	}

	switch {
	case errors.Is(err, domain.ErrMenuNotFound):
		WriteError(w, http.StatusBadRequest, "menu_not_found", err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		WriteError(w, http.StatusBadRequest, "item_not_found", err.Error())
	case errors.Is(err, domain.ErrCatalogUnavailable):
		WriteError(w, http.StatusServiceUnavailable, "catalog_unavailable", "Menu catalog is temporarily unavailable")
	case errors.Is(err, domain.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "order_not_found", "Order not found")
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "Order belongs to another user")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrMenuNotFound       = errors.New("menu_not_found")
	ErrItemNotFound       = errors.New("item_not_found")
	ErrCatalogUnavailable = errors.New("catalog_unavailable")
	ErrOrderNotFound      = errors.New("order_not_found")
	ErrUserAlreadyExists  = errors.New("user_already_exists")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrIncorrectPassword  = errors.New("incorrect_password")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// LineError reports which line of an order failed to resolve.
// Err is one of ErrMenuNotFound, ErrItemNotFound or a wrapped
// ErrCatalogUnavailable.
type LineError struct {
	Index  int
	MenuID string
	ItemID string
	Err    error
}

func (e *LineError) Error() string {
	switch {
	case errors.Is(e.Err, ErrMenuNotFound):
		return fmt.Sprintf("line %d: menu %q not found", e.Index, e.MenuID)
	case errors.Is(e.Err, ErrItemNotFound):
		return fmt.Sprintf("line %d: item %q not found in menu %q", e.Index, e.ItemID, e.MenuID)
	}
	return fmt.Sprintf("line %d: %v", e.Index, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// StoreError wraps a persistence failure that happened after pricing
// succeeded. The order was not saved.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

package service

import (
	"context"

	"github.com/efreitasn/orderdesk/internal/domain"
)

// MenuReader is the read side of the catalog.
type MenuReader interface {
	FindMenu(ctx context.Context, menuID string) (*domain.Menu, error)
	ListMenus(ctx context.Context) ([]*domain.Menu, error)
}

// MenuService serves the catalog to clients.
type MenuService struct {
	catalog MenuReader
}

// NewMenuService creates a new MenuService.
func NewMenuService(catalog MenuReader) *MenuService {
	return &MenuService{catalog: catalog}
}

// ListMenus returns every menu ordered by id.
func (s *MenuService) ListMenus(ctx context.Context) ([]*domain.Menu, error) {
	return s.catalog.ListMenus(ctx)
}

// GetMenu returns a single menu.
func (s *MenuService) GetMenu(ctx context.Context, menuID string) (*domain.Menu, error) {
	return s.catalog.FindMenu(ctx, menuID)
}

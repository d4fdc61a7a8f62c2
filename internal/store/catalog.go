package store

import (
	"context"
	"sync"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/google/btree"
)

func menuLess(a, b *domain.Menu) bool {
	return a.MenuID < b.MenuID
}

// CatalogStore is a thread-safe in-memory store for menus, kept in a
// B-tree ordered by menu_id so listings are stable.
//
// Stored menus are never mutated: Put replaces the whole document, so a
// *domain.Menu handed to a reader stays a consistent snapshot.
type CatalogStore struct {
	mu    sync.RWMutex
	menus *btree.BTreeG[*domain.Menu]
}

// NewCatalogStore creates an empty CatalogStore.
func NewCatalogStore() *CatalogStore {
	const degree = 16
	return &CatalogStore{
		menus: btree.NewG[*domain.Menu](degree, menuLess),
	}
}

// Put inserts or replaces a menu. The menu is copied.
func (s *CatalogStore) Put(_ context.Context, m *domain.Menu) error {
	cp := cloneMenu(m)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.menus.ReplaceOrInsert(cp)
	return nil
}

// FindMenu retrieves a menu by ID. It returns
// domain.ErrMenuNotFound if the menu does not exist.
func (s *CatalogStore) FindMenu(_ context.Context, menuID string) (*domain.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.menus.Get(&domain.Menu{MenuID: menuID})
	if !ok {
		return nil, domain.ErrMenuNotFound
	}
	return m, nil
}

// ListMenus returns all menus ordered by menu_id.
func (s *CatalogStore) ListMenus(_ context.Context) ([]*domain.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Menu, 0, s.menus.Len())
	s.menus.Ascend(func(m *domain.Menu) bool {
		result = append(result, m)
		return true
	})
	return result, nil
}

func cloneMenu(m *domain.Menu) *domain.Menu {
	cp := &domain.Menu{
		MenuID: m.MenuID,
		Name:   m.Name,
		Items:  make([]domain.Item, len(m.Items)),
	}
	for i, it := range m.Items {
		cit := it
		cit.Options = make([]domain.Option, len(it.Options))
		for j, opt := range it.Options {
			cit.Options[j] = domain.Option{
				Name:    opt.Name,
				Choices: append([]domain.Choice(nil), opt.Choices...),
			}
		}
		cp.Items[i] = cit
	}
	return cp
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/jackc/pgx/v5"
)

type itemDoc struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Price   int64       `json:"price_cents"`
	Options []optionDoc `json:"options"`
}

type optionDoc struct {
	Name    string      `json:"name"`
	Choices []choiceDoc `json:"choices"`
}

type choiceDoc struct {
	Name  string `json:"name"`
	Delta int64  `json:"delta_cents"`
}

// CatalogStore keeps one row per menu with its items as a JSONB array.
type CatalogStore struct {
	db *DB
}

// NewCatalogStore creates a CatalogStore on db.
func NewCatalogStore(db *DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// Put inserts or replaces a menu document.
func (s *CatalogStore) Put(ctx context.Context, m *domain.Menu) error {
	items, err := json.Marshal(itemsToDocs(m.Items))
	if err != nil {
		return fmt.Errorf("marshal menu items: %w", err)
	}
	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO menus (id, name, items, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, items = EXCLUDED.items, updated_at = now()`,
		m.MenuID, m.Name, items,
	)
	if err != nil {
		return fmt.Errorf("upsert menu %s: %w", m.MenuID, err)
	}
	return nil
}

// FindMenu loads a menu by ID. It returns domain.ErrMenuNotFound if the
// row does not exist.
func (s *CatalogStore) FindMenu(ctx context.Context, menuID string) (*domain.Menu, error) {
	var (
		name  string
		items []byte
	)
	err := s.db.Pool.QueryRow(ctx, `SELECT name, items FROM menus WHERE id = $1`, menuID).Scan(&name, &items)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMenuNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query menu %s: %w", menuID, err)
	}
	return decodeMenu(menuID, name, items)
}

// ListMenus returns every menu ordered by id.
func (s *CatalogStore) ListMenus(ctx context.Context) ([]*domain.Menu, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT id, name, items FROM menus ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query menus: %w", err)
	}
	defer rows.Close()

	menus := make([]*domain.Menu, 0)
	for rows.Next() {
		var (
			id, name string
			items    []byte
		)
		if err := rows.Scan(&id, &name, &items); err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		m, err := decodeMenu(id, name, items)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menus: %w", err)
	}
	return menus, nil
}

func decodeMenu(id, name string, raw []byte) (*domain.Menu, error) {
	var docs []itemDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode menu %s items: %w", id, err)
	}
	return &domain.Menu{MenuID: id, Name: name, Items: docsToItems(docs)}, nil
}

func itemsToDocs(items []domain.Item) []itemDoc {
	docs := make([]itemDoc, len(items))
	for i, it := range items {
		d := itemDoc{ID: it.ItemID, Name: it.Name, Price: int64(it.Price), Options: make([]optionDoc, len(it.Options))}
		for j, opt := range it.Options {
			od := optionDoc{Name: opt.Name, Choices: make([]choiceDoc, len(opt.Choices))}
			for k, c := range opt.Choices {
				od.Choices[k] = choiceDoc{Name: c.Name, Delta: int64(c.PriceDelta)}
			}
			d.Options[j] = od
		}
		docs[i] = d
	}
	return docs
}

func docsToItems(docs []itemDoc) []domain.Item {
	items := make([]domain.Item, len(docs))
	for i, d := range docs {
		it := domain.Item{ItemID: d.ID, Name: d.Name, Price: domain.Money(d.Price)}
		for _, od := range d.Options {
			opt := domain.Option{Name: od.Name}
			for _, c := range od.Choices {
				opt.Choices = append(opt.Choices, domain.Choice{Name: c.Name, PriceDelta: domain.Money(c.Delta)})
			}
			it.Options = append(it.Options, opt)
		}
		items[i] = it
	}
	return items
}

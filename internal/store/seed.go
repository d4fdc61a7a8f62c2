package store

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/efreitasn/orderdesk/internal/domain"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout of a catalog seed file:
//
//	menus:
//	  - id: coffee
//	    name: Coffee
//	    items:
//	      - id: latte
//	        name: Latte
//	        price: 4.00
//	        options:
//	          - name: Size
//	            choices:
//	              - {name: Large, price: 1.50}
type catalogFile struct {
	Menus []menuYAML `yaml:"menus"`
}

type menuYAML struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Items []itemYAML `yaml:"items"`
}

type itemYAML struct {
	ID      string       `yaml:"id"`
	Name    string       `yaml:"name"`
	Price   float64      `yaml:"price"`
	Options []optionYAML `yaml:"options"`
}

type optionYAML struct {
	Name    string       `yaml:"name"`
	Choices []choiceYAML `yaml:"choices"`
}

type choiceYAML struct {
	Name  string  `yaml:"name"`
	Price float64 `yaml:"price"`
}

// ParseCatalog decodes a YAML catalog and validates ids and prices.
func ParseCatalog(r io.Reader) ([]*domain.Menu, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seenMenus := make(map[string]bool, len(f.Menus))
	menus := make([]*domain.Menu, 0, len(f.Menus))
	for _, m := range f.Menus {
		if m.ID == "" {
			return nil, fmt.Errorf("menu %q: id is required", m.Name)
		}
		if seenMenus[m.ID] {
			return nil, fmt.Errorf("duplicate menu id %q", m.ID)
		}
		seenMenus[m.ID] = true

		menu := &domain.Menu{MenuID: m.ID, Name: m.Name, Items: make([]domain.Item, 0, len(m.Items))}
		seenItems := make(map[string]bool, len(m.Items))
		for _, it := range m.Items {
			if it.ID == "" {
				return nil, fmt.Errorf("menu %q: item %q: id is required", m.ID, it.Name)
			}
			if seenItems[it.ID] {
				return nil, fmt.Errorf("menu %q: duplicate item id %q", m.ID, it.ID)
			}
			seenItems[it.ID] = true

			price, err := domain.PriceFromDollars(it.Price)
			if err != nil {
				return nil, fmt.Errorf("menu %q: item %q: %w", m.ID, it.ID, err)
			}
			item := domain.Item{ItemID: it.ID, Name: it.Name, Price: price}
			for _, opt := range it.Options {
				option := domain.Option{Name: opt.Name}
				for _, c := range opt.Choices {
					delta, err := domain.PriceFromDollars(c.Price)
					if err != nil {
						return nil, fmt.Errorf("menu %q: item %q: choice %q: %w", m.ID, it.ID, c.Name, err)
					}
					option.Choices = append(option.Choices, domain.Choice{Name: c.Name, PriceDelta: delta})
				}
				item.Options = append(item.Options, option)
			}
			menu.Items = append(menu.Items, item)
		}
		menus = append(menus, menu)
	}
	return menus, nil
}

// CatalogWriter is anything menus can be seeded into.
type CatalogWriter interface {
	Put(ctx context.Context, m *domain.Menu) error
}

// SeedCatalogFile loads the YAML catalog at path into dst and returns the
// number of menus written.
func SeedCatalogFile(ctx context.Context, path string, dst CatalogWriter) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	menus, err := ParseCatalog(f)
	if err != nil {
		return 0, err
	}
	for _, m := range menus {
		if err := dst.Put(ctx, m); err != nil {
			return 0, fmt.Errorf("seed menu %s: %w", m.MenuID, err)
		}
	}
	return len(menus), nil
}

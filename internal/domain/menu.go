package domain

// Choice is one selectable value of an Option.
type Choice struct {
	Name       string
	PriceDelta Money
}

// Option is a customization axis of an Item, e.g. "Size".
type Option struct {
	Name    string
	Choices []Choice
}

// Item is a single orderable product.
type Item struct {
	ItemID  string
	Name    string
	Price   Money // base price
	Options []Option
}

// Menu is a named catalog of items.
type Menu struct {
	MenuID string
	Name   string
	Items  []Item
}

// FindItem returns the item with the given ID, or ErrItemNotFound.
func (m *Menu) FindItem(itemID string) (*Item, error) {
	for i := range m.Items {
		if m.Items[i].ItemID == itemID {
			return &m.Items[i], nil
		}
	}
	return nil, ErrItemNotFound
}

// ChoiceDelta returns the price delta of the first choice named name,
// searching every option of the item in order. Choice names are matched
// across all options, not within a particular one. ok is false when no
// choice matches, in which case the delta is 0.
func (it *Item) ChoiceDelta(name string) (delta Money, ok bool) {
	for _, opt := range it.Options {
		for _, c := range opt.Choices {
			if c.Name == name {
				return c.PriceDelta, true
			}
		}
	}
	return 0, false
}

package domain

import "time"

// OrderLineRequest is one requested line of an order, as received from
// the client. Choices are choice names; they are matched against the
// item's options by name.
type OrderLineRequest struct {
	MenuID   string
	ItemID   string
	Choices  []string
	Quantity int64
}

// ResolvedLine is an OrderLineRequest after it was checked against the
// catalog and priced.
type ResolvedLine struct {
	MenuID         string
	ItemID         string
	ItemName       string
	Choices        []string // as requested
	MatchedChoices []string // subset of Choices that exist under the item
	Quantity       int64
	BasePrice      Money
	Contribution   Money // base price + matched choice deltas
}

// Order is a fully priced order. It is immutable once persisted.
type Order struct {
	OrderID   string
	UserID    string
	Lines     []ResolvedLine
	Total     Money
	CreatedAt time.Time
}

// SumLines recomputes the total from the line contributions.
func (o *Order) SumLines() Money {
	var total Money
	for _, l := range o.Lines {
		total += l.Contribution
	}
	return total
}

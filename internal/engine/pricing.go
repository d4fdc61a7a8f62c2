// Package engine prices orders against the menu catalog.
//
// Every line of an order is resolved independently: the menu is fetched,
// the item is located inside it, and the line contribution is the item's
// base price plus the deltas of the selected choices that exist under the
// item. Lines are resolved concurrently and the order is only produced
// once all of them succeeded.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/efreitasn/orderdesk/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentLookups bounds the catalog lookups in flight for one order.
const maxConcurrentLookups = 16

var tracer = otel.Tracer("github.com/efreitasn/orderdesk/internal/engine")

// Catalog is the read side of the menu store. Implementations must be
// safe for concurrent use.
type Catalog interface {
	FindMenu(ctx context.Context, menuID string) (*domain.Menu, error)
}

// Pricer resolves order lines against a Catalog and computes totals.
// It holds no mutable state and can be shared between requests.
type Pricer struct {
	catalog       Catalog
	lookupTimeout time.Duration
}

// NewPricer creates a Pricer. A zero lookupTimeout leaves catalog
// lookups bounded only by the caller's context.
func NewPricer(catalog Catalog, lookupTimeout time.Duration) *Pricer {
	return &Pricer{
		catalog:       catalog,
		lookupTimeout: lookupTimeout,
	}
}

// ResolveLine checks a single line against the catalog and prices it.
//
// Unknown menus and items fail with domain.ErrMenuNotFound and
// domain.ErrItemNotFound. Any other catalog failure, including a lookup
// timeout, is wrapped in domain.ErrCatalogUnavailable. Choice names that
// match nothing under the item are accepted and add nothing. Quantity is
// carried through but does not scale the contribution.
func (p *Pricer) ResolveLine(ctx context.Context, line domain.OrderLineRequest) (domain.ResolvedLine, error) {
	menu, err := p.findMenu(ctx, line.MenuID)
	if err != nil {
		return domain.ResolvedLine{}, err
	}

	item, err := menu.FindItem(line.ItemID)
	if err != nil {
		return domain.ResolvedLine{}, err
	}

	resolved := domain.ResolvedLine{
		MenuID:         line.MenuID,
		ItemID:         line.ItemID,
		ItemName:       item.Name,
		Choices:        append([]string(nil), line.Choices...),
		MatchedChoices: make([]string, 0, len(line.Choices)),
		Quantity:       line.Quantity,
		BasePrice:      item.Price,
		Contribution:   item.Price,
	}
	for _, name := range line.Choices {
		delta, ok := item.ChoiceDelta(name)
		if !ok {
			continue
		}
		resolved.MatchedChoices = append(resolved.MatchedChoices, name)
		resolved.Contribution += delta
	}
	return resolved, nil
}

func (p *Pricer) findMenu(ctx context.Context, menuID string) (*domain.Menu, error) {
	if p.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.lookupTimeout)
		defer cancel()
	}

	menu, err := p.catalog.FindMenu(ctx, menuID)
	switch {
	case err == nil:
		return menu, nil
	case errors.Is(err, domain.ErrMenuNotFound):
		return nil, domain.ErrMenuNotFound
	default:
		return nil, fmt.Errorf("%w: menu %s: %v", domain.ErrCatalogUnavailable, menuID, err)
	}
}

// PriceOrder resolves every line concurrently and returns an unpersisted
// order whose total is the sum of the line contributions.
//
// If any line fails the whole order fails: the remaining lookups are
// cancelled, nothing is returned but the first error observed, wrapped in
// a *domain.LineError naming the line.
func (p *Pricer) PriceOrder(ctx context.Context, userID string, lines []domain.OrderLineRequest) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "engine.PriceOrder", trace.WithAttributes(
		attribute.String("order.user_id", userID),
		attribute.Int("order.lines", len(lines)),
	))
	defer span.End()

	resolved := make([]domain.ResolvedLine, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			rl, err := p.ResolveLine(gctx, line)
			if err != nil {
				return &domain.LineError{Index: i, MenuID: line.MenuID, ItemID: line.ItemID, Err: err}
			}
			// Each goroutine owns its own slot.
			resolved[i] = rl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order resolution failed")
		return nil, err
	}

	order := &domain.Order{
		UserID: userID,
		Lines:  resolved,
	}
	order.Total = order.SumLines()

	span.SetAttributes(attribute.Int64("order.total_cents", int64(order.Total)))
	return order, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/jackc/pgx/v5"
)

type lineDoc struct {
	MenuID         string   `json:"menu"`
	ItemID         string   `json:"item"`
	ItemName       string   `json:"item_name"`
	Choices        []string `json:"options"`
	MatchedChoices []string `json:"matched_options"`
	Quantity       int64    `json:"quantity"`
	BasePrice      int64    `json:"base_price_cents"`
	Contribution   int64    `json:"contribution_cents"`
}

// OrderStore persists priced orders, one row per order.
type OrderStore struct {
	db *DB
}

// NewOrderStore creates an OrderStore on db.
func NewOrderStore(db *DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create writes the order in a single INSERT.
func (s *OrderStore) Create(ctx context.Context, o *domain.Order) error {
	lines, err := json.Marshal(linesToDocs(o.Lines))
	if err != nil {
		return fmt.Errorf("marshal order lines: %w", err)
	}
	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO orders (id, user_id, lines, total_cents, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		o.OrderID, o.UserID, lines, int64(o.Total), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.OrderID, err)
	}
	return nil
}

// Get loads an order by ID. It returns domain.ErrOrderNotFound if the
// row does not exist.
func (s *OrderStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, lines, total_cents, created_at FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order %s: %w", id, err)
	}
	return o, nil
}

// ListByUser returns a user's orders newest first with the total count.
func (s *OrderStore) ListByUser(ctx context.Context, userID string, page, limit int) ([]*domain.Order, int, error) {
	var total int
	if err := s.db.Pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	if page < 1 || limit < 1 || page-1 > total/limit {
		return []*domain.Order{}, total, nil
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, user_id, lines, total_cents, created_at FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, total, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o         domain.Order
		lines     []byte
		total     int64
		createdAt time.Time
	)
	if err := row.Scan(&o.OrderID, &o.UserID, &lines, &total, &createdAt); err != nil {
		return nil, err
	}
	var docs []lineDoc
	if err := json.Unmarshal(lines, &docs); err != nil {
		return nil, fmt.Errorf("decode order lines: %w", err)
	}
	o.Lines = docsToLines(docs)
	o.Total = domain.Money(total)
	o.CreatedAt = createdAt
	return &o, nil
}

func linesToDocs(lines []domain.ResolvedLine) []lineDoc {
	docs := make([]lineDoc, len(lines))
	for i, l := range lines {
		docs[i] = lineDoc{
			MenuID:         l.MenuID,
			ItemID:         l.ItemID,
			ItemName:       l.ItemName,
			Choices:        l.Choices,
			MatchedChoices: l.MatchedChoices,
			Quantity:       l.Quantity,
			BasePrice:      int64(l.BasePrice),
			Contribution:   int64(l.Contribution),
		}
	}
	return docs
}

func docsToLines(docs []lineDoc) []domain.ResolvedLine {
	lines := make([]domain.ResolvedLine, len(docs))
	for i, d := range docs {
		lines[i] = domain.ResolvedLine{
			MenuID:         d.MenuID,
			ItemID:         d.ItemID,
			ItemName:       d.ItemName,
			Choices:        d.Choices,
			MatchedChoices: d.MatchedChoices,
			Quantity:       d.Quantity,
			BasePrice:      domain.Money(d.BasePrice),
			Contribution:   domain.Money(d.Contribution),
		}
	}
	return lines
}

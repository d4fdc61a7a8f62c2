package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/google/uuid"
)

// testDB connects to ORDERDESK_TEST_DATABASE_URL or skips the test.
func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("ORDERDESK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ORDERDESK_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, url, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCatalogStore_RoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewCatalogStore(db)

	id := "menu-" + uuid.NewString()
	in := &domain.Menu{
		MenuID: id,
		Name:   "Coffee",
		Items: []domain.Item{{
			ItemID:  "latte",
			Name:    "Latte",
			Price:   400,
			Options: []domain.Option{{Name: "Size", Choices: []domain.Choice{{Name: "Large", PriceDelta: 150}}}},
		}},
	}
	if err := s.Put(ctx, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.FindMenu(ctx, id)
	if err != nil {
		t.Fatalf("FindMenu: %v", err)
	}
	item, err := got.FindItem("latte")
	if err != nil {
		t.Fatalf("FindItem: %v", err)
	}
	if delta, ok := item.ChoiceDelta("Large"); !ok || delta != 150 {
		t.Errorf("Large delta = (%d, %v), want (150, true)", delta, ok)
	}

	if _, err := s.FindMenu(ctx, "missing-"+id); err != domain.ErrMenuNotFound {
		t.Errorf("expected ErrMenuNotFound, got %v", err)
	}
}

func TestOrderStore_RoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewOrderStore(db)

	userID := "user-" + uuid.NewString()
	o := &domain.Order{
		OrderID: uuid.NewString(),
		UserID:  userID,
		Lines: []domain.ResolvedLine{{
			MenuID: "coffee", ItemID: "latte", Choices: []string{"Large", "Oat Milk"},
			MatchedChoices: []string{"Large"}, Quantity: 2, BasePrice: 400, Contribution: 550,
		}},
		Total:     550,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := s.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, o.OrderID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Total != 550 || len(got.Lines) != 1 || got.Lines[0].Quantity != 2 {
		t.Errorf("unexpected order: %+v", got)
	}

	orders, total, err := s.ListByUser(ctx, userID, 1, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 1 || len(orders) != 1 {
		t.Errorf("ListByUser = %d orders (total %d), want 1", len(orders), total)
	}

	orders, total, err = s.ListByUser(ctx, userID, 92233720368547760, 100)
	if err != nil {
		t.Fatalf("ListByUser huge page: %v", err)
	}
	if total != 1 || len(orders) != 0 {
		t.Errorf("ListByUser huge page = %d orders (total %d), want 0 of 1", len(orders), total)
	}

	if _, err := s.Get(ctx, uuid.NewString()); err != domain.ErrOrderNotFound {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewUserStore(db)

	email := uuid.NewString() + "@example.com"
	u := &domain.User{UserID: uuid.NewString(), Name: "Ada", Email: email, PasswordHash: []byte("hash"), CreatedAt: time.Now()}
	if err := s.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := &domain.User{UserID: uuid.NewString(), Name: "Ada", Email: email, PasswordHash: []byte("hash"), CreatedAt: time.Now()}
	if err := s.Create(ctx, dup); err != domain.ErrUserAlreadyExists {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}

	got, err := s.GetByEmail(ctx, email)
	if err != nil || got.UserID != u.UserID {
		t.Fatalf("GetByEmail = %+v, %v", got, err)
	}
}

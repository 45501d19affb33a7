package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"mintgate/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("sqlite open: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := models.Seed(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func TestSeedIdempotent(t *testing.T) {
	db := setupDB(t)
	avail := New(db)
	ctx := context.Background()

	if _, err := avail.MarkUnavailable(ctx, 7); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := models.Seed(db); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	count, err := avail.CountAvailable(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != models.TokenUniverse-1 {
		t.Fatalf("reseed resurrected a token: count=%d", count)
	}
}

func TestListMatchesCount(t *testing.T) {
	avail := New(setupDB(t))
	ctx := context.Background()

	for _, id := range []int{0, 1, 1000, 4321, models.MaxTokenID} {
		if _, err := avail.MarkUnavailable(ctx, id); err != nil {
			t.Fatalf("mark %d: %v", id, err)
		}
	}
	ids, err := avail.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	count, err := avail.CountAvailable(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if len(ids) != count {
		t.Fatalf("list length %d != count %d", len(ids), count)
	}
	if count != models.TokenUniverse-5 {
		t.Fatalf("expected %d available, got %d", models.TokenUniverse-5, count)
	}
}

func TestListOrderedNoDuplicates(t *testing.T) {
	avail := New(setupDB(t))
	ids, err := avail.ListAvailable(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != models.TokenUniverse {
		t.Fatalf("expected full universe, got %d", len(ids))
	}
	for i, id := range ids {
		if id != i {
			t.Fatalf("position %d holds %d; result not ordered-by-id without gaps", i, id)
		}
	}
}

func TestMarkUnavailableIdempotent(t *testing.T) {
	avail := New(setupDB(t))
	ctx := context.Background()

	first, err := avail.MarkUnavailable(ctx, 42)
	if err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if !first {
		t.Fatalf("first mark should report a transition")
	}
	second, err := avail.MarkUnavailable(ctx, 42)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if second {
		t.Fatalf("second mark should be a no-op")
	}
	count, err := avail.CountAvailable(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != models.TokenUniverse-1 {
		t.Fatalf("double mark changed count: %d", count)
	}
}

func TestMarkUnavailableOutOfRange(t *testing.T) {
	avail := New(setupDB(t))
	ctx := context.Background()
	if _, err := avail.MarkUnavailable(ctx, -1); err == nil {
		t.Fatalf("expected error for negative id")
	}
	if _, err := avail.MarkUnavailable(ctx, models.TokenUniverse); err == nil {
		t.Fatalf("expected error for id past the universe")
	}
}

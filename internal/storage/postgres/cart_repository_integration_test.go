package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestCartRepository_PostgresLifecycle(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedProductForIntegrationTest(t, store, "prod-latte", "Latte", 450, 10, true)
	seedProductForIntegrationTest(t, store, "prod-espresso", "Espresso", 300, 5, true)
	repo := NewCartRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	line := domain.CartLine{
		ID:            "line-1",
		UserID:        "user-1",
		ProductID:     "prod-latte",
		Qty:           2,
		Customization: domain.NewCustomization("variant-size-l"),
		CreatedAt:     now.Add(-time.Minute),
		UpdatedAt:     now.Add(-time.Minute),
	}
	if err := repo.Insert(line); err != nil {
		t.Fatalf("insert line: %v", err)
	}
	if err := repo.Insert(domain.CartLine{
		ID: "line-2", UserID: "user-1", ProductID: "prod-espresso", Qty: 1,
		CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("insert second line: %v", err)
	}

	lines, err := repo.ListByUser("user-1")
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(lines) != 2 || lines[0].ID != "line-1" {
		t.Fatalf("unexpected list order: %+v", lines)
	}
	if key := lines[0].Customization.Key(); key != "variant-size-l" {
		t.Fatalf("customization not round-tripped: %s", key)
	}

	found, err := repo.FindLine("user-1", "prod-latte", "variant-size-l")
	if err != nil {
		t.Fatalf("find line: %v", err)
	}
	if found.ID != "line-1" {
		t.Fatalf("unexpected found line: %+v", found)
	}

	if err := repo.UpdateQty("user-1", "line-1", 5); err != nil {
		t.Fatalf("update qty: %v", err)
	}
	got, err := repo.GetLine("user-1", "line-1")
	if err != nil {
		t.Fatalf("get line: %v", err)
	}
	if got.Qty != 5 {
		t.Fatalf("expected qty 5, got %d", got.Qty)
	}

	if err := repo.Delete("user-1", "line-2"); err != nil {
		t.Fatalf("delete line: %v", err)
	}
	if err := repo.Clear("user-1"); err != nil {
		t.Fatalf("clear cart: %v", err)
	}
	rest, err := repo.ListByUser("user-1")
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(rest))
	}
}

func TestCartRepository_PostgresErrorsAndIsolation(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedProductForIntegrationTest(t, store, "prod-latte", "Latte", 450, 10, true)
	repo := NewCartRepository(store)

	line := domain.CartLine{
		ID: "line-owner", UserID: "user-1", ProductID: "prod-latte", Qty: 1,
	}
	if err := repo.Insert(line); err != nil {
		t.Fatalf("insert line: %v", err)
	}

	// Чужая корзина не видит позицию.
	if _, err := repo.GetLine("user-2", "line-owner"); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound for foreign user, got %v", err)
	}
	if err := repo.UpdateQty("user-2", "line-owner", 2); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound on foreign update, got %v", err)
	}
	if err := repo.Delete("user-2", "line-owner"); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound on foreign delete, got %v", err)
	}

	if err := repo.UpdateQty("user-1", "line-owner", 0); !errors.Is(err, domain.ErrQtyInvalid) {
		t.Fatalf("expected ErrQtyInvalid, got %v", err)
	}

	// Та же кастомизация повторно не вставляется: уникальный индекс.
	dup := domain.CartLine{
		ID: "line-dup", UserID: "user-1", ProductID: "prod-latte", Qty: 3,
	}
	if err := repo.Insert(dup); !errors.Is(err, domain.ErrCartLineDuplicate) {
		t.Fatalf("expected ErrCartLineDuplicate, got %v", err)
	}

	if _, err := repo.FindLine("user-1", "prod-latte", "variant-unknown"); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound for unknown selection, got %v", err)
	}
}

package memory

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestCartRepository_InsertAndList(t *testing.T) {
	repo := NewCartRepository()

	line := domain.CartLine{
		ID:            "line-1",
		UserID:        "user-1",
		ProductID:     "prod-latte",
		Qty:           2,
		Customization: domain.NewCustomization("size-l"),
	}
	if err := repo.Insert(line); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := repo.Insert(domain.CartLine{ID: "line-2", UserID: "user-2", ProductID: "prod-latte", Qty: 1}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	lines, err := repo.ListByUser("user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(lines) != 1 || lines[0].ID != "line-1" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
	if lines[0].UpdatedAt.IsZero() {
		t.Fatal("expected updated_at to be set")
	}
}

func TestCartRepository_InsertValidates(t *testing.T) {
	repo := NewCartRepository()

	if err := repo.Insert(domain.CartLine{ID: "line-1", UserID: "user-1", ProductID: "prod-latte", Qty: 0}); err == nil {
		t.Fatal("expected validation error for zero qty")
	}
}

func TestCartRepository_FindLine(t *testing.T) {
	repo := NewCartRepository()

	custom := domain.NewCustomization("size-l", "milk-oat")
	if err := repo.Insert(domain.CartLine{ID: "line-1", UserID: "user-1", ProductID: "prod-latte", Qty: 1, Customization: custom}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	found, err := repo.FindLine("user-1", "prod-latte", domain.NewCustomization("milk-oat", "size-l").Key())
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found.ID != "line-1" {
		t.Fatalf("unexpected line: %+v", found)
	}

	if _, err := repo.FindLine("user-1", "prod-latte", ""); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound, got %v", err)
	}
	if _, err := repo.FindLine("user-2", "prod-latte", custom.Key()); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Fatalf("expected user isolation, got %v", err)
	}
}

func TestCartRepository_UpdateQtyAndDelete(t *testing.T) {
	repo := NewCartRepository()

	if err := repo.Insert(domain.CartLine{ID: "line-1", UserID: "user-1", ProductID: "prod-latte", Qty: 1}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := repo.UpdateQty("user-1", "line-1", 5); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	line, err := repo.GetLine("user-1", "line-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if line.Qty != 5 {
		t.Fatalf("expected qty 5, got %d", line.Qty)
	}

	if err := repo.UpdateQty("user-1", "line-1", 0); !errors.Is(err, domain.ErrQtyInvalid) {
		t.Fatalf("expected ErrQtyInvalid, got %v", err)
	}
	if err := repo.UpdateQty("user-2", "line-1", 2); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Fatalf("expected user isolation, got %v", err)
	}

	if err := repo.Delete("user-1", "line-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.GetLine("user-1", "line-1"); !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Fatalf("expected ErrCartLineNotFound, got %v", err)
	}
}

func TestCartRepository_Clear(t *testing.T) {
	repo := NewCartRepository()

	for _, id := range []string{"line-1", "line-2"} {
		if err := repo.Insert(domain.CartLine{ID: id, UserID: "user-1", ProductID: "prod-latte", Qty: 1}); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}
	if err := repo.Insert(domain.CartLine{ID: "line-3", UserID: "user-2", ProductID: "prod-latte", Qty: 1}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := repo.Clear("user-1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	empty, err := repo.ListByUser("user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(empty))
	}

	other, err := repo.ListByUser("user-2")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("clear must not touch other users, got %d lines", len(other))
	}
}

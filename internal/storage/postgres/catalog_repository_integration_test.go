package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func seedCatalogForIntegrationTest(t *testing.T, store *Store) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := store.DB().ExecContext(ctx, `
		INSERT INTO categories (id, name, active) VALUES
			('cat-coffee', 'Coffee', TRUE),
			('cat-tea', 'Tea', TRUE),
			('cat-hidden', 'Hidden', FALSE)
	`); err != nil {
		t.Fatalf("seed categories: %v", err)
	}

	if _, err := store.DB().ExecContext(ctx, `
		INSERT INTO products (id, category_id, name, description, base_price_minor, stock_quantity, active) VALUES
			('prod-latte', 'cat-coffee', 'Latte', 'espresso with milk', 450, 10, TRUE),
			('prod-espresso', 'cat-coffee', 'Espresso', '', 300, 5, TRUE),
			('prod-matcha', 'cat-tea', 'Matcha', '', 500, 3, TRUE),
			('prod-retired', 'cat-coffee', 'Retired Drink', '', 400, 7, FALSE)
	`); err != nil {
		t.Fatalf("seed products: %v", err)
	}

	seedVariantForIntegrationTest(t, store, "variant-size-l", "prod-latte", "size", "Large", 100)
	seedVariantForIntegrationTest(t, store, "variant-milk-oat", "prod-latte", "milk", "Oat milk", 75)
}

func TestCatalogRepository_PostgresGetAndList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewCatalogRepository(store)

	item, err := repo.Get("prod-latte")
	if err != nil {
		t.Fatalf("get latte: %v", err)
	}
	if item.Name != "Latte" || item.BasePriceMinor != 450 || item.StockQty != 10 {
		t.Fatalf("unexpected product payload: %+v", item)
	}
	if len(item.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(item.Variants))
	}
	if _, ok := item.VariantByID("variant-size-l"); !ok {
		t.Fatal("expected size variant to be loaded")
	}

	if _, err := repo.Get("prod-ghost"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	all, err := repo.List(domain.CatalogFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 active products, got %d", len(all))
	}

	coffee, err := repo.List(domain.CatalogFilter{CategoryID: "cat-coffee"})
	if err != nil {
		t.Fatalf("list coffee: %v", err)
	}
	if len(coffee) != 2 {
		t.Fatalf("expected 2 coffee products, got %d", len(coffee))
	}

	found, err := repo.List(domain.CatalogFilter{Search: "espresso"})
	if err != nil {
		t.Fatalf("search espresso: %v", err)
	}
	// ILIKE ищет и в описании: latte описан как "espresso with milk".
	if len(found) != 2 {
		t.Fatalf("expected 2 search hits, got %d", len(found))
	}
}

func TestCatalogRepository_PostgresCategoriesAndAvailability(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewCatalogRepository(store)

	categories, err := repo.Categories()
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 active categories, got %d", len(categories))
	}

	ok, err := repo.CheckAvailable("prod-matcha", 3)
	if err != nil || !ok {
		t.Fatalf("expected matcha x3 available, ok=%v err=%v", ok, err)
	}

	ok, err = repo.CheckAvailable("prod-matcha", 4)
	if err != nil || ok {
		t.Fatalf("expected matcha x4 unavailable, ok=%v err=%v", ok, err)
	}

	ok, err = repo.CheckAvailable("prod-retired", 1)
	if err != nil || ok {
		t.Fatalf("inactive product must not be available, ok=%v err=%v", ok, err)
	}

	if _, err := repo.CheckAvailable("prod-ghost", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogRepository_PostgresPopularAndByCategories(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewCatalogRepository(store)
	orders := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	order := sampleOrder("order-popular", "user-1", now)
	order.Lines[0].ProductID = "prod-espresso"
	order.Lines[0].Customization = domain.Customization{}
	if err := orders.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	popular, err := repo.ListPopular(2)
	if err != nil {
		t.Fatalf("list popular: %v", err)
	}
	if len(popular) != 2 || popular[0].ID != "prod-espresso" {
		t.Fatalf("expected espresso to lead popularity: %+v", popular)
	}

	recommended, err := repo.ListByCategories([]string{"cat-coffee"}, []string{"prod-espresso"}, 10)
	if err != nil {
		t.Fatalf("list by categories: %v", err)
	}
	if len(recommended) != 1 || recommended[0].ID != "prod-latte" {
		t.Fatalf("expected only latte after exclusion: %+v", recommended)
	}

	empty, err := repo.ListByCategories(nil, nil, 10)
	if err != nil {
		t.Fatalf("list by empty categories: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty result for no categories, got %d", len(empty))
	}
}

func TestCatalogRepository_PostgresAdminMutations(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	seedCatalogForIntegrationTest(t, store)
	repo := NewCatalogRepository(store)

	err := repo.CreateItem(domain.CatalogItem{
		ID:             "prod-raf",
		CategoryID:     "cat-coffee",
		Name:           "Raf",
		Description:    "espresso with cream",
		BasePriceMinor: 525,
		StockQty:       4,
		Active:         true,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	item, err := repo.Get("prod-raf")
	if err != nil {
		t.Fatalf("get created item: %v", err)
	}
	if item.BasePriceMinor != 525 || item.StockQty != 4 || !item.Active {
		t.Fatalf("unexpected created item: %+v", item)
	}

	err = repo.CreateItem(domain.CatalogItem{ID: "prod-raf", Name: "Duplicate"})
	if !errors.Is(err, domain.ErrProductAlreadyExists) {
		t.Fatalf("expected ErrProductAlreadyExists, got %v", err)
	}

	// Частичное обновление: незаданные поля остаются прежними.
	price := int64(550)
	if err := repo.UpdateItem("prod-raf", domain.CatalogItemUpdate{BasePriceMinor: &price}); err != nil {
		t.Fatalf("update item: %v", err)
	}
	item, _ = repo.Get("prod-raf")
	if item.BasePriceMinor != 550 || item.Name != "Raf" || item.Description != "espresso with cream" {
		t.Fatalf("unexpected item after update: %+v", item)
	}

	if err := repo.UpdateItem("prod-ghost", domain.CatalogItemUpdate{BasePriceMinor: &price}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	if err := repo.DeactivateItem("prod-raf"); err != nil {
		t.Fatalf("deactivate item: %v", err)
	}
	item, _ = repo.Get("prod-raf")
	if item.Active {
		t.Fatal("item must be inactive after deactivate")
	}

	if err := repo.DeactivateItem("prod-ghost"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

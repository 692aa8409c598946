package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestNewDependencies(t *testing.T) {
	logger := log.WithField("test", "dependencies")
	deps := NewDependencies(logger)

	if deps == nil {
		t.Fatal("NewDependencies should not return nil")
	}

	if deps.Catalog == nil {
		t.Error("Catalog should not be nil")
	}

	if deps.Cart == nil {
		t.Error("Cart should not be nil")
	}

	if deps.Orders == nil {
		t.Error("Orders should not be nil")
	}

	if deps.Placer == nil {
		t.Error("Placer should not be nil")
	}

	if deps.OutboxRepo == nil {
		t.Error("OutboxRepo should not be nil")
	}

	if deps.IdempotencyRepo == nil {
		t.Error("IdempotencyRepo should not be nil")
	}

	if deps.PaymentSvc == nil {
		t.Error("PaymentSvc should not be nil")
	}

	if deps.Logger == nil {
		t.Error("Logger should not be nil")
	}
}

func TestNewDependencies_WithNilLogger(t *testing.T) {
	deps := NewDependencies(nil)

	if deps == nil {
		t.Fatal("NewDependencies should not return nil")
	}

	if deps.Logger == nil {
		t.Error("Logger should be initialized even when nil is passed")
	}
}

func TestNewDependencies_DemoCatalogSeeded(t *testing.T) {
	deps := NewDependencies(nil)

	// In-memory режим поднимается с демо-каталогом, иначе API бесполезен.
	categories, err := deps.Catalog.Categories()
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) == 0 {
		t.Error("demo catalog should contain categories")
	}

	item, err := deps.Catalog.Get("prod-latte")
	if err != nil {
		t.Fatalf("Get prod-latte failed: %v", err)
	}
	if item.BasePriceMinor <= 0 {
		t.Errorf("demo product should have a positive price, got %d", item.BasePriceMinor)
	}
}

func TestNewDependencies_ServicesWired(t *testing.T) {
	deps := NewDependencies(nil)

	// Сервисы делят одно хранилище: позиция из Cart видна через View.
	line, err := deps.Cart.Add("user-deps-test", "prod-latte", 1, nil)
	if err != nil {
		t.Fatalf("Cart.Add failed: %v", err)
	}

	view, err := deps.Cart.View("user-deps-test")
	if err != nil {
		t.Fatalf("Cart.View failed: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].Line.ID != line.ID {
		t.Errorf("cart view should contain the added line, got %+v", view.Lines)
	}
}

func TestNewDependencies_LoggerField(t *testing.T) {
	customLogger := log.WithField("custom", "value")
	deps := NewDependencies(customLogger)

	if deps.Logger != customLogger {
		t.Error("Logger should be the same instance as passed")
	}
}

func TestNewDependencies_IndependentInstances(t *testing.T) {
	deps1 := NewDependencies(nil)
	deps2 := NewDependencies(nil)

	if deps1 == deps2 {
		t.Error("NewDependencies should create independent instances")
	}

	// Хранилища должны быть независимыми: корзина одного не видна другому.
	if _, err := deps1.Cart.Add("user-isolated", "prod-espresso", 1, nil); err != nil {
		t.Fatalf("Cart.Add failed: %v", err)
	}
	view, err := deps2.Cart.View("user-isolated")
	if err != nil {
		t.Fatalf("Cart.View failed: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Error("cart instances should be independent")
	}
}

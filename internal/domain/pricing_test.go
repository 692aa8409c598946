package domain_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// helper для товара с вариантами всех трёх типов.
func makeLatte() domain.CatalogItem {
	return domain.CatalogItem{
		ID:             "prod-latte",
		CategoryID:     "cat-coffee",
		Name:           "Latte",
		BasePriceMinor: 450,
		StockQty:       10,
		Active:         true,
		Variants: []domain.Variant{
			{ID: "size-l", ProductID: "prod-latte", Type: domain.VariantTypeSize, Name: "Large", PriceModifierMinor: 75, Active: true},
			{ID: "milk-oat", ProductID: "prod-latte", Type: domain.VariantTypeMilk, Name: "Oat milk", PriceModifierMinor: 60, Active: true},
			{ID: "size-s", ProductID: "prod-latte", Type: domain.VariantTypeSize, Name: "Small", PriceModifierMinor: -50, Active: true},
			{ID: "extra-old", ProductID: "prod-latte", Type: domain.VariantTypeExtra, Name: "Retired extra", PriceModifierMinor: 30, Active: false},
		},
	}
}

func TestResolveUnitPrice_BasePriceWithoutCustomization(t *testing.T) {
	price, err := domain.ResolveUnitPrice(makeLatte(), domain.Customization{})
	if err != nil {
		t.Fatalf("resolve price: %v", err)
	}
	if price != 450 {
		t.Fatalf("expected base price 450, got %d", price)
	}
}

func TestResolveUnitPrice_SumsModifiers(t *testing.T) {
	price, err := domain.ResolveUnitPrice(makeLatte(), domain.NewCustomization("size-l", "milk-oat"))
	if err != nil {
		t.Fatalf("resolve price: %v", err)
	}
	if price != 450+75+60 {
		t.Fatalf("expected 585, got %d", price)
	}
}

func TestResolveUnitPrice_NegativeModifier(t *testing.T) {
	price, err := domain.ResolveUnitPrice(makeLatte(), domain.NewCustomization("size-s"))
	if err != nil {
		t.Fatalf("resolve price: %v", err)
	}
	if price != 400 {
		t.Fatalf("expected 400, got %d", price)
	}
}

func TestResolveUnitPrice_UnknownVariant(t *testing.T) {
	_, err := domain.ResolveUnitPrice(makeLatte(), domain.NewCustomization("size-l", "variant-of-other-product"))
	if !errors.Is(err, domain.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}

	var unknown *domain.UnknownVariantError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownVariantError, got %T", err)
	}
	if unknown.VariantID != "variant-of-other-product" {
		t.Fatalf("expected offending variant id in error, got %q", unknown.VariantID)
	}
}

func TestResolveUnitPrice_InactiveVariant(t *testing.T) {
	_, err := domain.ResolveUnitPrice(makeLatte(), domain.NewCustomization("extra-old"))
	if !errors.Is(err, domain.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant for inactive variant, got %v", err)
	}
}

func TestResolveUnitPrice_Deterministic(t *testing.T) {
	item := makeLatte()
	custom := domain.NewCustomization("milk-oat", "size-l")

	first, err := domain.ResolveUnitPrice(item, custom)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := domain.ResolveUnitPrice(item, custom)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical results for identical inputs: %d vs %d", first, second)
	}
}

func TestTaxOn_RoundsHalfUp(t *testing.T) {
	cases := []struct {
		subtotal int64
		tax      int64
	}{
		{0, 0},
		{100, 8},     // 8.00
		{106, 8},     // 8.48 → 8
		{107, 9},     // 8.56 → 9
		{1050, 84},   // 84.00
		{1056, 84},   // 84.48 → 84
		{1057, 85},   // 84.56 → 85
		{456, 36},    // 36.48 → 36
		{20000, 1600},
	}

	for _, tc := range cases {
		if got := domain.TaxOn(tc.subtotal); got != tc.tax {
			t.Fatalf("TaxOn(%d): expected %d, got %d", tc.subtotal, tc.tax, got)
		}
	}
}

func TestCalcTotals(t *testing.T) {
	lines := []domain.OrderLine{
		{ProductID: "prod-1", Qty: 2, UnitPriceMinor: 450},
		{ProductID: "prod-2", Qty: 1, UnitPriceMinor: 585},
	}

	totals := domain.CalcTotals(lines)
	if totals.SubtotalMinor != 1485 {
		t.Fatalf("expected subtotal 1485, got %d", totals.SubtotalMinor)
	}
	if totals.TaxMinor != domain.TaxOn(1485) {
		t.Fatalf("expected tax %d, got %d", domain.TaxOn(1485), totals.TaxMinor)
	}
	if totals.TotalMinor != totals.SubtotalMinor+totals.TaxMinor {
		t.Fatalf("expected total = subtotal + tax, got %d", totals.TotalMinor)
	}
}

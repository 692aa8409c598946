package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestCustomization_EqualityIsOrderIndependent(t *testing.T) {
	a := domain.NewCustomization("size-l", "milk-oat", "extra-shot")
	b := domain.NewCustomization("extra-shot", "size-l", "milk-oat")

	if !a.Equal(b) {
		t.Fatalf("expected customizations to be equal regardless of order")
	}
	if a.Key() != b.Key() {
		t.Fatalf("expected identical keys, got %q vs %q", a.Key(), b.Key())
	}
}

func TestCustomization_NormalizesDuplicatesAndBlanks(t *testing.T) {
	c := domain.NewCustomization("milk-oat", "", "milk-oat", "  size-l  ")

	ids := c.VariantIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 variant ids after normalization, got %v", ids)
	}
	if ids[0] != "milk-oat" || ids[1] != "size-l" {
		t.Fatalf("expected sorted ids, got %v", ids)
	}
}

func TestCustomization_NotEqualDifferentSets(t *testing.T) {
	a := domain.NewCustomization("size-l")
	b := domain.NewCustomization("size-l", "extra-shot")

	if a.Equal(b) || b.Equal(a) {
		t.Fatalf("expected customizations with different sets to differ")
	}
}

func TestCustomization_KeyRoundTrip(t *testing.T) {
	orig := domain.NewCustomization("extra-shot", "size-l")
	parsed := domain.ParseCustomizationKey(orig.Key())

	if !orig.Equal(parsed) {
		t.Fatalf("expected parsed customization to equal original")
	}
}

func TestCustomization_EmptyKey(t *testing.T) {
	empty := domain.ParseCustomizationKey("")
	if !empty.IsEmpty() {
		t.Fatalf("expected empty customization from empty key")
	}
	if empty.Key() != "" {
		t.Fatalf("expected empty key, got %q", empty.Key())
	}
}

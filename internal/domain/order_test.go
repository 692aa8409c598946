package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// helper для создания консистентного заказа с одной позицией.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	subtotal := int64(2 * 450)
	tax := domain.TaxOn(subtotal)
	return domain.Order{
		ID:            "order-1",
		UserID:        "user-1",
		Status:        domain.OrderStatusProcessing,
		PaymentMethod: domain.PaymentMethodCard,
		PaymentStatus: domain.PaymentStatusCompleted,
		SubtotalMinor: subtotal,
		TaxMinor:      tax,
		TotalMinor:    subtotal + tax,
		Lines: []domain.OrderLine{
			{
				ID:             "line-1",
				ProductID:      "prod-latte",
				Qty:            2,
				UnitPriceMinor: 450,
				CreatedAt:      now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no user",
			mut: func(o *domain.Order) {
				o.UserID = ""
			},
		},
		{
			name: "no lines",
			mut: func(o *domain.Order) {
				o.Lines = nil
				o.SubtotalMinor = 0
				o.TaxMinor = 0
				o.TotalMinor = 0
			},
		},
		{
			name: "subtotal mismatch",
			mut: func(o *domain.Order) {
				o.SubtotalMinor += 100
			},
		},
		{
			name: "tax mismatch",
			mut: func(o *domain.Order) {
				o.TaxMinor++
			},
		},
		{
			name: "total mismatch",
			mut: func(o *domain.Order) {
				o.TotalMinor--
			},
		},
		{
			name: "zero qty",
			mut: func(o *domain.Order) {
				o.Lines[0].Qty = 0
			},
		},
		{
			name: "negative price",
			mut: func(o *domain.Order) {
				o.Lines[0].UnitPriceMinor = -1
			},
		},
		{
			name: "bad payment method",
			mut: func(o *domain.Order) {
				o.PaymentMethod = "barter"
			},
		},
		{
			name: "bad status",
			mut: func(o *domain.Order) {
				o.Status = "shipped"
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)
			if errs := order.ValidateInvariants(); len(errs) == 0 {
				t.Fatalf("expected validation errors for case %q", tc.name)
			}
		})
	}
}

func TestCartLineValidate(t *testing.T) {
	line := domain.CartLine{
		ID:        "line-1",
		UserID:    "user-1",
		ProductID: "prod-latte",
		Qty:       1,
	}
	if errs := line.Validate(); len(errs) != 0 {
		t.Fatalf("expected valid cart line, got %v", errs)
	}

	line.Qty = 0
	line.UserID = ""
	if errs := line.Validate(); len(errs) != 2 {
		t.Fatalf("expected 2 validation errors, got %v", errs)
	}
}

func TestCartLineSameSelection(t *testing.T) {
	line := domain.CartLine{
		ProductID:     "prod-latte",
		Customization: domain.NewCustomization("size-l", "milk-oat"),
	}

	if !line.SameSelection("prod-latte", domain.NewCustomization("milk-oat", "size-l")) {
		t.Fatalf("expected same selection for reordered customization")
	}
	if line.SameSelection("prod-latte", domain.NewCustomization("size-l")) {
		t.Fatalf("expected different selection for different customization")
	}
	if line.SameSelection("prod-mocha", line.Customization) {
		t.Fatalf("expected different selection for different product")
	}
}

package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/payment"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type placerFixture struct {
	catalog  *memory.CatalogRepository
	cart     *memory.CartRepository
	orders   *memory.OrderRepository
	outbox   domain.OutboxRepository
	payments *payment.StubAuthorizer
	placer   *checkout.Placer
}

func newPlacerFixture(t *testing.T) *placerFixture {
	t.Helper()

	catalog := memory.NewCatalogRepository()
	catalog.SeedItem(domain.CatalogItem{
		ID:             "prod-latte",
		CategoryID:     "cat-coffee",
		Name:           "Latte",
		BasePriceMinor: 450,
		StockQty:       10,
		Active:         true,
		Variants: []domain.Variant{
			{ID: "size-l", ProductID: "prod-latte", Type: domain.VariantTypeSize, Name: "Large", PriceModifierMinor: 100, Active: true},
			{ID: "milk-oat", ProductID: "prod-latte", Type: domain.VariantTypeMilk, Name: "Oat", PriceModifierMinor: 75, Active: true},
		},
	})
	catalog.SeedItem(domain.CatalogItem{
		ID:             "prod-espresso",
		CategoryID:     "cat-coffee",
		Name:           "Espresso",
		BasePriceMinor: 300,
		StockQty:       2,
		Active:         true,
	})
	catalog.SeedItem(domain.CatalogItem{
		ID:             "prod-retired",
		CategoryID:     "cat-coffee",
		Name:           "Retired",
		BasePriceMinor: 100,
		StockQty:       5,
		Active:         false,
	})

	cart := memory.NewCartRepository()
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	payments := payment.NewStubAuthorizer()
	store := memory.NewCheckoutStore(catalog, cart, orders)

	return &placerFixture{
		catalog:  catalog,
		cart:     cart,
		orders:   orders,
		outbox:   outbox,
		payments: payments,
		placer:   checkout.NewPlacerWithoutMetrics(cart, catalog, store, payments, outbox, nil),
	}
}

func (f *placerFixture) addLine(t *testing.T, id, productID string, qty int32, variantIDs ...string) {
	t.Helper()
	line := domain.CartLine{
		ID:            id,
		UserID:        "user-1",
		ProductID:     productID,
		Qty:           qty,
		Customization: domain.NewCustomization(variantIDs...),
	}
	if err := f.cart.Insert(line); err != nil {
		t.Fatalf("insert cart line failed: %v", err)
	}
}

func cardInput() checkout.PlaceOrderInput {
	return checkout.PlaceOrderInput{
		UserID:         "user-1",
		PaymentMethod:  domain.PaymentMethodCard,
		PaymentDetails: domain.PaymentDetails{CardNumber: "4242424242424242"},
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newPlacerFixture(t)
	f.addLine(t, "line-1", "prod-latte", 2, "size-l", "milk-oat")
	f.addLine(t, "line-2", "prod-espresso", 1)

	result, err := f.placer.PlaceOrder(context.Background(), cardInput())
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	// 2 x (450+100+75) + 1 x 300 = 1550.
	wantSubtotal := int64(1550)
	wantTax := domain.TaxOn(wantSubtotal)
	if result.SubtotalMinor != wantSubtotal {
		t.Fatalf("expected subtotal %d, got %d", wantSubtotal, result.SubtotalMinor)
	}
	if result.TaxMinor != wantTax || result.TotalMinor != wantSubtotal+wantTax {
		t.Fatalf("unexpected totals: %+v", result)
	}
	if result.PaymentStatus != domain.PaymentStatusCompleted {
		t.Fatalf("expected completed payment, got %s", result.PaymentStatus)
	}
	if f.payments.LastAmount != result.TotalMinor {
		t.Fatalf("payment authorized for %d, want %d", f.payments.LastAmount, result.TotalMinor)
	}

	order, err := f.orders.Get(result.OrderID)
	if err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
	if order.Status != domain.OrderStatusProcessing {
		t.Fatalf("expected processing status, got %s", order.Status)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 order lines, got %d", len(order.Lines))
	}
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("persisted order violates invariants: %v", errs)
	}

	lines, _ := f.cart.ListByUser("user-1")
	if len(lines) != 0 {
		t.Fatalf("expected cart cleared, got %d lines", len(lines))
	}

	item, _ := f.catalog.Get("prod-latte")
	if item.StockQty != 8 {
		t.Fatalf("expected latte stock 8, got %d", item.StockQty)
	}
	item, _ = f.catalog.Get("prod-espresso")
	if item.StockQty != 1 {
		t.Fatalf("expected espresso stock 1, got %d", item.StockQty)
	}

	pending, err := f.outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "order.created" || pending[0].AggregateID != result.OrderID {
		t.Fatalf("expected order.created event, got %+v", pending)
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newPlacerFixture(t)

	_, err := f.placer.PlaceOrder(context.Background(), cardInput())
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if f.payments.Calls != 0 {
		t.Fatalf("payment must not be called on empty cart, got %d calls", f.payments.Calls)
	}
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newPlacerFixture(t)
	f.addLine(t, "line-1", "prod-espresso", 3)

	_, err := f.placer.PlaceOrder(context.Background(), cardInput())
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected errors.Is match with sentinel, got %v", err)
	}
	if stockErr.Available != 2 {
		t.Fatalf("unexpected available: %d", stockErr.Available)
	}
	if f.payments.Calls != 0 {
		t.Fatal("payment must not be called when stock is insufficient")
	}

	// Состояние не изменилось.
	item, _ := f.catalog.Get("prod-espresso")
	if item.StockQty != 2 {
		t.Fatalf("expected stock untouched, got %d", item.StockQty)
	}
	lines, _ := f.cart.ListByUser("user-1")
	if len(lines) != 1 {
		t.Fatalf("expected cart untouched, got %d lines", len(lines))
	}
}

func TestPlaceOrder_InactiveProduct(t *testing.T) {
	f := newPlacerFixture(t)
	f.addLine(t, "line-1", "prod-retired", 1)

	_, err := f.placer.PlaceOrder(context.Background(), cardInput())
	var unavailErr *domain.ProductUnavailableError
	if !errors.As(err, &unavailErr) {
		t.Fatalf("expected ProductUnavailableError, got %v", err)
	}
	if unavailErr.ProductID != "prod-retired" {
		t.Fatalf("unexpected product id: %s", unavailErr.ProductID)
	}
}

func TestPlaceOrder_UnknownVariant(t *testing.T) {
	f := newPlacerFixture(t)
	f.addLine(t, "line-1", "prod-latte", 1, "size-xxl")

	_, err := f.placer.PlaceOrder(context.Background(), cardInput())
	var variantErr *domain.UnknownVariantError
	if !errors.As(err, &variantErr) {
		t.Fatalf("expected UnknownVariantError, got %v", err)
	}
	if f.payments.Calls != 0 {
		t.Fatal("payment must not be called when pricing fails")
	}
}

func TestPlaceOrder_PaymentDeclined(t *testing.T) {
	f := newPlacerFixture(t)
	f.addLine(t, "line-1", "prod-latte", 1)
	f.payments.Status = domain.PaymentStatusFailed

	_, err := f.placer.PlaceOrder(context.Background(), cardInput())
	if !errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}

	// Отказ платежа не оставляет следов.
	item, _ := f.catalog.Get("prod-latte")
	if item.StockQty != 10 {
		t.Fatalf("expected stock untouched, got %d", item.StockQty)
	}
	lines, _ := f.cart.ListByUser("user-1")
	if len(lines) != 1 {
		t.Fatalf("expected cart untouched, got %d lines", len(lines))
	}
	orders, _ := f.orders.ListByUser("user-1", 0, 0)
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
	pending, _ := f.outbox.PullPending(10)
	if len(pending) != 0 {
		t.Fatalf("expected no outbox events, got %d", len(pending))
	}
}

func TestPlaceOrder_SentinelCardDeclined(t *testing.T) {
	catalog := memory.NewCatalogRepository()
	catalog.SeedItem(domain.CatalogItem{
		ID: "prod-latte", Name: "Latte", BasePriceMinor: 450, StockQty: 10, Active: true,
	})
	cart := memory.NewCartRepository()
	orders := memory.NewOrderRepository()
	store := memory.NewCheckoutStore(catalog, cart, orders)
	placer := checkout.NewPlacerWithoutMetrics(cart, catalog, store, payment.NewMockAuthorizer(nil), memory.NewOutboxRepository(), nil)

	if err := cart.Insert(domain.CartLine{ID: "line-1", UserID: "user-1", ProductID: "prod-latte", Qty: 1}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	_, err := placer.PlaceOrder(context.Background(), checkout.PlaceOrderInput{
		UserID:         "user-1",
		PaymentMethod:  domain.PaymentMethodCard,
		PaymentDetails: domain.PaymentDetails{CardNumber: payment.DeclineCardNumber},
	})
	if !errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}
}

func TestPlaceOrder_PaymentTransportError(t *testing.T) {
	f := newPlacerFixture(t)
	f.addLine(t, "line-1", "prod-latte", 1)
	f.payments.Err = errors.New("gateway timeout")

	_, err := f.placer.PlaceOrder(context.Background(), cardInput())
	if err == nil || errors.Is(err, domain.ErrPaymentDeclined) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestPlaceOrder_ConcurrentLastUnit(t *testing.T) {
	catalog := memory.NewCatalogRepository()
	catalog.SeedItem(domain.CatalogItem{
		ID: "prod-last", Name: "Last Unit", BasePriceMinor: 100, StockQty: 1, Active: true,
	})
	cart := memory.NewCartRepository()
	orders := memory.NewOrderRepository()
	store := memory.NewCheckoutStore(catalog, cart, orders)
	placer := checkout.NewPlacerWithoutMetrics(cart, catalog, store, payment.NewMockAuthorizer(nil), memory.NewOutboxRepository(), nil)

	users := []string{"user-a", "user-b", "user-c"}
	for i, userID := range users {
		line := domain.CartLine{ID: "line-" + userID, UserID: userID, ProductID: "prod-last", Qty: 1}
		if err := cart.Insert(line); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}

	var wg sync.WaitGroup
	results := make(chan error, len(users))
	for _, userID := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := placer.PlaceOrder(context.Background(), checkout.PlaceOrderInput{
				UserID:        userID,
				PaymentMethod: domain.PaymentMethodCash,
			})
			results <- err
		}(userID)
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrInsufficientStock):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != len(users)-1 {
		t.Fatalf("expected exactly one winner, got won=%d lost=%d", won, lost)
	}

	item, _ := catalog.Get("prod-last")
	if item.StockQty != 0 {
		t.Fatalf("expected stock 0, got %d", item.StockQty)
	}
}

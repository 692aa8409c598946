package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func makeOrder(id, userID string, createdAt time.Time) domain.Order {
	subtotal := int64(450)
	tax := domain.TaxOn(subtotal)
	return domain.Order{
		ID:            id,
		UserID:        userID,
		Status:        domain.OrderStatusProcessing,
		PaymentMethod: domain.PaymentMethodCard,
		PaymentStatus: domain.PaymentStatusCompleted,
		SubtotalMinor: subtotal,
		TaxMinor:      tax,
		TotalMinor:    subtotal + tax,
		Lines: []domain.OrderLine{
			{ID: id + "-line", ProductID: "prod-latte", Qty: 1, UnitPriceMinor: 450},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	repo := NewOrderRepository()
	order := makeOrder("order-1", "user-1", time.Now().UTC())

	if err := repo.Create(order); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(order); !errors.Is(err, domain.ErrOrderAlreadyExists) {
		t.Fatalf("expected ErrOrderAlreadyExists, got %v", err)
	}

	got, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.TotalMinor != order.TotalMinor || len(got.Lines) != 1 {
		t.Fatalf("unexpected order: %+v", got)
	}

	if _, err := repo.Get("missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListByUser(t *testing.T) {
	repo := NewOrderRepository()
	base := time.Now().UTC()

	for i, id := range []string{"order-a", "order-b", "order-c"} {
		order := makeOrder(id, "user-1", base.Add(time.Duration(i)*time.Minute))
		if err := repo.Create(order); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}
	if err := repo.Create(makeOrder("order-x", "user-2", base)); err != nil {
		t.Fatalf("create order-x failed: %v", err)
	}

	orders, err := repo.ListByUser("user-1", 2, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	// Новые первыми.
	if orders[0].ID != "order-c" || orders[1].ID != "order-b" {
		t.Fatalf("unexpected order ids: %s, %s", orders[0].ID, orders[1].ID)
	}

	page, err := repo.ListByUser("user-1", 2, 2)
	if err != nil {
		t.Fatalf("list with offset failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != "order-a" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestOrderRepository_ListAll(t *testing.T) {
	repo := NewOrderRepository()
	base := time.Now().UTC()

	if err := repo.Create(makeOrder("order-a", "user-1", base)); err != nil {
		t.Fatalf("create order-a failed: %v", err)
	}
	if err := repo.Create(makeOrder("order-b", "user-2", base.Add(time.Minute))); err != nil {
		t.Fatalf("create order-b failed: %v", err)
	}
	completed := makeOrder("order-c", "user-3", base.Add(2*time.Minute))
	completed.Status = domain.OrderStatusCompleted
	if err := repo.Create(completed); err != nil {
		t.Fatalf("create order-c failed: %v", err)
	}

	all, err := repo.ListAll(domain.OrderFilter{})
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(all))
	}
	// Новые первыми, независимо от пользователя.
	if all[0].ID != "order-c" || all[2].ID != "order-a" {
		t.Fatalf("unexpected ordering: %s ... %s", all[0].ID, all[2].ID)
	}

	processing, err := repo.ListAll(domain.OrderFilter{Status: domain.OrderStatusProcessing})
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if len(processing) != 2 {
		t.Fatalf("expected 2 processing orders, got %d", len(processing))
	}

	page, err := repo.ListAll(domain.OrderFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list with offset failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != "order-b" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestOrderRepository_SetStatus(t *testing.T) {
	repo := NewOrderRepository()
	if err := repo.Create(makeOrder("order-1", "user-1", time.Now().UTC())); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.SetStatus("order-1", domain.OrderStatusCompleted); err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	got, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != domain.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}

	if err := repo.SetStatus("order-1", "shipped"); !errors.Is(err, domain.ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}
	if err := repo.SetStatus("missing", domain.OrderStatusCancelled); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

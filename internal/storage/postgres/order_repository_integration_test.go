package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestOrderRepository_PostgresCreateGetListAndSetStatus(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	order1 := sampleOrder("order-1", "user-1", now.Add(-2*time.Minute))
	order2 := sampleOrder("order-2", "user-1", now.Add(-time.Minute))

	if err := repo.Create(order1); err != nil {
		t.Fatalf("create order1: %v", err)
	}
	if err := repo.Create(order2); err != nil {
		t.Fatalf("create order2: %v", err)
	}

	got, err := repo.Get(order1.ID)
	if err != nil {
		t.Fatalf("get order1: %v", err)
	}
	if got.ID != order1.ID || got.UserID != order1.UserID || got.Status != order1.Status {
		t.Fatalf("unexpected order payload: %+v", got)
	}
	if got.SubtotalMinor != order1.SubtotalMinor || got.TotalMinor != order1.TotalMinor {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if len(got.Lines) != len(order1.Lines) {
		t.Fatalf("unexpected lines count: got=%d want=%d", len(got.Lines), len(order1.Lines))
	}
	if key := got.Lines[0].Customization.Key(); key != "variant-size-l" {
		t.Fatalf("unexpected customization key: %s", key)
	}

	listed, err := repo.ListByUser("user-1", 1, 0)
	if err != nil {
		t.Fatalf("list by user with limit: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != order2.ID {
		t.Fatalf("unexpected list result with limit: %+v", listed)
	}

	page2, err := repo.ListByUser("user-1", 1, 1)
	if err != nil {
		t.Fatalf("list by user with offset: %v", err)
	}
	if len(page2) != 1 || page2[0].ID != order1.ID {
		t.Fatalf("unexpected second page: %+v", page2)
	}

	if err := repo.SetStatus(order1.ID, domain.OrderStatusCompleted); err != nil {
		t.Fatalf("set status: %v", err)
	}

	updated, err := repo.Get(order1.ID)
	if err != nil {
		t.Fatalf("get updated order: %v", err)
	}
	if updated.Status != domain.OrderStatusCompleted {
		t.Fatalf("unexpected status after update: %s", updated.Status)
	}
}

func TestOrderRepository_PostgresErrors(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	base := sampleOrder("order-errors", "user-2", now)

	if _, err := repo.Get("missing-order"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	if err := repo.SetStatus("missing-order", domain.OrderStatusCompleted); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound on status of missing order, got %v", err)
	}

	if err := repo.SetStatus(base.ID, domain.OrderStatus("shipped-to-mars")); !errors.Is(err, domain.ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}

	if err := repo.Create(base); err != nil {
		t.Fatalf("create base order: %v", err)
	}
	if err := repo.Create(base); !errors.Is(err, domain.ErrOrderAlreadyExists) {
		t.Fatalf("expected ErrOrderAlreadyExists on duplicate create, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected unique violation for code 23505")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "22001"}) {
		t.Fatal("unexpected unique violation for non-unique code")
	}
	if isUniqueViolation(errors.New("plain error")) {
		t.Fatal("plain error must not be unique violation")
	}
}

func sampleOrder(id, userID string, createdAt time.Time) domain.Order {
	lines := []domain.OrderLine{
		{
			ID:             id + "-line-1",
			ProductID:      "prod-latte",
			Qty:            2,
			UnitPriceMinor: 550,
			Customization:  domain.NewCustomization("variant-size-l"),
			CreatedAt:      createdAt,
		},
	}

	return domain.Order{
		ID:            id,
		UserID:        userID,
		Status:        domain.OrderStatusProcessing,
		PaymentMethod: domain.PaymentMethodCard,
		PaymentStatus: domain.PaymentStatusCompleted,
		SubtotalMinor: 1100,
		TaxMinor:      domain.TaxOn(1100),
		TotalMinor:    1100 + domain.TaxOn(1100),
		Lines:         lines,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestOrderRepository_PostgresListAll(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	first := sampleOrder("order-all-1", "user-1", now.Add(-2*time.Minute))
	second := sampleOrder("order-all-2", "user-2", now.Add(-time.Minute))
	cancelled := sampleOrder("order-all-3", "user-3", now)
	cancelled.Status = domain.OrderStatusCancelled

	for _, order := range []domain.Order{first, second, cancelled} {
		if err := repo.Create(order); err != nil {
			t.Fatalf("create %s: %v", order.ID, err)
		}
	}

	all, err := repo.ListAll(domain.OrderFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(all))
	}
	if all[0].ID != cancelled.ID || all[2].ID != first.ID {
		t.Fatalf("unexpected ordering: %s ... %s", all[0].ID, all[2].ID)
	}
	if len(all[0].Lines) != 1 {
		t.Fatalf("expected lines to be loaded, got %d", len(all[0].Lines))
	}

	processing, err := repo.ListAll(domain.OrderFilter{Status: domain.OrderStatusProcessing})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(processing) != 2 {
		t.Fatalf("expected 2 processing orders, got %d", len(processing))
	}

	page, err := repo.ListAll(domain.OrderFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list with offset: %v", err)
	}
	if len(page) != 1 || page[0].ID != second.ID {
		t.Fatalf("unexpected page: %+v", page)
	}
}

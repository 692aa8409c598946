package app

import (
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// newTestOrder создаёт тестовый заказ для использования в тестах.
func newTestOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:            "test-order-1",
		UserID:        "test-user-1",
		Status:        domain.OrderStatusPending,
		PaymentMethod: domain.PaymentMethodCash,
		PaymentStatus: domain.PaymentStatusCompleted,
		SubtotalMinor: 1000,
		TaxMinor:      domain.TaxOn(1000),
		TotalMinor:    1000 + domain.TaxOn(1000),
		Lines: []domain.OrderLine{
			{
				ID:             "line-1",
				ProductID:      "prod-test",
				Qty:            2,
				UnitPriceMinor: 500,
				CreatedAt:      now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

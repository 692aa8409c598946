package domain

import (
	"context"
	"time"
)

// PaymentAuthorizer описывает платёжный шлюз. Авторизация выполняется до
// начала транзакции оформления: блокировки склада не удерживаются на время
// внешнего вызова.
type PaymentAuthorizer interface {
	// Authorize проводит платёж на сумму amountMinor. Бизнес-отказ выражается
	// статусом PaymentStatusFailed; ошибка возвращается только при сбое
	// взаимодействия с провайдером (таймаут, недоступность).
	Authorize(ctx context.Context, method PaymentMethod, details PaymentDetails, amountMinor int64) (PaymentStatus, error)
}

// CheckoutTx — операции фазы commit, выполняемые как одна атомарная единица:
// списание остатков, вставка заказа, очистка корзины. Либо применяется всё,
// либо ничего.
type CheckoutTx interface {
	// ReserveStock атомарно уменьшает остаток товара на qty, если остатка
	// хватает; иначе возвращает InsufficientStockError, не меняя остаток.
	ReserveStock(productID string, qty int32) error
	// InsertOrder сохраняет заказ вместе с замороженными позициями.
	InsertOrder(order Order) error
	// ClearCart удаляет позиции корзины пользователя.
	ClearCart(userID string) error
}

// CheckoutStore открывает атомарную единицу оформления заказа. Если fn
// возвращает ошибку, все выполненные внутри мутации откатываются.
type CheckoutStore interface {
	WithinCheckout(ctx context.Context, fn func(tx CheckoutTx) error) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

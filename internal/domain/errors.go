package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart возвращается при попытке оформить заказ из пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductUnavailable — товар удалён или снят с продажи.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInsufficientStock — запрошенное количество превышает остаток на складе.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrUnknownVariant — кастомизация ссылается на чужой или неактивный вариант.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrPaymentDeclined — платёж отклонён провайдером (бизнес-ошибка).
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCartLineNotFound возвращается, если позиция корзины не найдена.
	ErrCartLineNotFound = errors.New("cart line not found")
	// ErrCartLineDuplicate — позиция с тем же товаром и кастомизацией уже есть;
	// такие позиции объединяются через UpdateQty, а не вставляются повторно.
	ErrCartLineDuplicate = errors.New("cart line already exists")
	// ErrOrderAlreadyExists сигнализирует о конфликте идентификаторов при вставке.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrProductAlreadyExists сигнализирует о конфликте идентификаторов товара.
	ErrProductAlreadyExists = errors.New("product already exists")

	// Ошибка отсутствующего идентификатора пользователя.
	ErrUserRequired = errors.New("user_id is required")
	// Ошибка отсутствующего идентификатора товара.
	ErrProductRequired = errors.New("product_id is required")
	// Ошибка при некорректном количестве (< 1).
	ErrQtyInvalid = errors.New("quantity must be at least 1")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка, если цена позиции отрицательная.
	ErrLinePriceInvalid = errors.New("line unit price must be non-negative")
	// Ошибка несоответствия подытога и сумм позиций.
	ErrSubtotalMismatch = errors.New("order subtotal does not match lines sum")
	// Ошибка несоответствия налога или итога формуле из подытога.
	ErrTotalsMismatch = errors.New("order totals do not match tax formula")
	// Ошибка неподдерживаемого способа оплаты.
	ErrPaymentMethodInvalid = errors.New("unsupported payment method")
	// Ошибка неподдерживаемого статуса заказа.
	ErrOrderStatusInvalid = errors.New("unsupported order status")
	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отсутствующей категории товара.
	ErrCategoryRequired = errors.New("category_id is required")
	// Ошибка отрицательной базовой цены.
	ErrPriceInvalid = errors.New("base price must be non-negative")
	// Ошибка отрицательного остатка.
	ErrStockInvalid = errors.New("stock quantity must be non-negative")

	// ErrIdempotencyKeyRequired — пустой ключ идемпотентности.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// ErrIdempotencyRequestHashRequired — пустой hash запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyKeyAlreadyExists — ключ уже зарегистрирован.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyKeyNotFound — ключ не найден.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	// ErrIdempotencyHashMismatch — ключ использован с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency key used with different request")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// InsufficientStockError уточняет ErrInsufficientStock: какой товар и сколько
// единиц доступно на момент проверки.
type InsufficientStockError struct {
	ProductID string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// Is позволяет errors.Is(err, ErrInsufficientStock) для типизированной ошибки.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ProductUnavailableError уточняет ErrProductUnavailable идентификатором товара.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is unavailable", e.ProductID)
}

func (e *ProductUnavailableError) Is(target error) bool {
	return target == ErrProductUnavailable
}

// UnknownVariantError уточняет ErrUnknownVariant: вариант не принадлежит товару
// или деактивирован.
type UnknownVariantError struct {
	ProductID string
	VariantID string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("variant %s does not belong to product %s or is inactive",
		e.VariantID, e.ProductID)
}

func (e *UnknownVariantError) Is(target error) bool {
	return target == ErrUnknownVariant
}

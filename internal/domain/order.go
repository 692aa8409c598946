package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, оплата ещё не подтверждена.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — оплата подтверждена, заказ готовится.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusCompleted — заказ выдан клиенту.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// OrderLine — замороженная копия позиции корзины на момент оформления.
// Цена зафиксирована и не зависит от последующих изменений каталога.
type OrderLine struct {
	ID        string
	ProductID string
	Qty       int32
	// UnitPriceMinor — цена за единицу, вычисленная на момент заказа.
	UnitPriceMinor int64
	Customization  Customization
	CreatedAt      time.Time
}

// Order агрегирует неизменяемое содержимое заказа. После создания меняется
// только поле Status.
type Order struct {
	ID            string
	UserID        string
	Status        OrderStatus
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	SubtotalMinor int64
	TaxMinor      int64
	TotalMinor    int64
	Notes         string
	Lines         []OrderLine
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}
	if !o.PaymentMethod.Valid() {
		errs = append(errs, ErrPaymentMethodInvalid)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrOrderStatusInvalid)
	}

	// Сверяем подытог с суммой позиций: qty * unit_price.
	var calc int64
	for _, line := range o.Lines {
		if line.Qty < 1 {
			errs = append(errs, ErrQtyInvalid)
		}
		if line.UnitPriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
		calc += int64(line.Qty) * line.UnitPriceMinor
	}
	if calc != o.SubtotalMinor {
		errs = append(errs, ErrSubtotalMismatch)
	}

	// Налог и итог обязаны следовать формуле из подытога.
	if o.TaxMinor != TaxOn(o.SubtotalMinor) || o.TotalMinor != o.SubtotalMinor+o.TaxMinor {
		errs = append(errs, ErrTotalsMismatch)
	}

	return errs
}

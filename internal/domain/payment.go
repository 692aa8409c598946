package domain

// PaymentMethod — способ оплаты заказа.
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

// Valid проверяет, что способ оплаты поддерживается.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodCash:
		return true
	default:
		return false
	}
}

// PaymentStatus описывает состояние платежа по заказу.
type PaymentStatus string

const (
	// PaymentStatusPending — платёж инициирован, но не подтверждён.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusCompleted — платёж успешно проведён.
	PaymentStatusCompleted PaymentStatus = "completed"
	// PaymentStatusFailed — провайдер отклонил платёж.
	PaymentStatusFailed PaymentStatus = "failed"
)

// PaymentDetails — данные платёжного инструмента, передаваемые авторизатору.
// Для метода cash поля остаются пустыми.
type PaymentDetails struct {
	CardNumber string `json:"card_number,omitempty"`
}

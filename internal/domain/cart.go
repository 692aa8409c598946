package domain

import "time"

// CartLine — позиция корзины пользователя. Цена в корзине не хранится:
// она всегда вычисляется по текущему состоянию каталога.
type CartLine struct {
	ID        string
	UserID    string
	ProductID string
	Qty       int32
	// Customization — выбранные варианты; пустое значение допустимо.
	Customization Customization
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate проверяет базовые инварианты позиции корзины.
func (l *CartLine) Validate() []error {
	var errs []error

	if l.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if l.ProductID == "" {
		errs = append(errs, ErrProductRequired)
	}
	if l.Qty < 1 {
		errs = append(errs, ErrQtyInvalid)
	}

	return errs
}

// SameSelection сообщает, относится ли позиция к тому же товару с той же
// кастомизацией. Такие позиции корзина обязана объединять, а не дублировать.
func (l *CartLine) SameSelection(productID string, customization Customization) bool {
	return l.ProductID == productID && l.Customization.Equal(customization)
}

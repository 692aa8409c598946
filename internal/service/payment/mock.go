package payment

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// DeclineCardNumber — номер карты, для которого авторизация всегда
// завершается отказом. Используется для воспроизведения сценария отказа
// платежа без реального провайдера.
const DeclineCardNumber = "4000000000000002"

// MockAuthorizer — заглушка платёжного шлюза. Наличные проходят всегда,
// карта проходит, если номер не совпадает с DeclineCardNumber (отсутствие
// реквизитов считается успехом).
type MockAuthorizer struct {
	logger *log.Entry
}

// NewMockAuthorizer создаёт заглушку платёжного шлюза.
func NewMockAuthorizer(logger *log.Entry) *MockAuthorizer {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &MockAuthorizer{logger: logger.WithField("component", "payment_mock")}
}

// Authorize имитирует авторизацию платежа. Бизнес-отказ выражается статусом
// PaymentStatusFailed; ошибка возвращается только при отменённом контексте.
func (a *MockAuthorizer) Authorize(ctx context.Context, method domain.PaymentMethod, details domain.PaymentDetails, amountMinor int64) (domain.PaymentStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.PaymentStatusPending, err
	}

	logger := a.logger.WithField("method", method).WithField("amount_minor", amountMinor)

	switch method {
	case domain.PaymentMethodCash:
		logger.Debug("payment authorized")
		return domain.PaymentStatusCompleted, nil
	case domain.PaymentMethodCard:
		card := strings.TrimSpace(details.CardNumber)
		if card == DeclineCardNumber {
			logger.Warn("payment declined")
			return domain.PaymentStatusFailed, nil
		}
		logger.Debug("payment authorized")
		return domain.PaymentStatusCompleted, nil
	default:
		return domain.PaymentStatusFailed, domain.ErrPaymentMethodInvalid
	}
}

var _ domain.PaymentAuthorizer = (*MockAuthorizer)(nil)

// StubAuthorizer — конфигурируемая заглушка PaymentAuthorizer для тестов.
type StubAuthorizer struct {
	Status domain.PaymentStatus
	Err    error

	Calls      int
	LastAmount int64
	LastMethod domain.PaymentMethod
}

// NewStubAuthorizer возвращает stub с успешным сценарием по умолчанию.
func NewStubAuthorizer() *StubAuthorizer {
	return &StubAuthorizer{Status: domain.PaymentStatusCompleted}
}

// Authorize возвращает заранее настроенный результат и считает вызовы.
func (s *StubAuthorizer) Authorize(ctx context.Context, method domain.PaymentMethod, details domain.PaymentDetails, amountMinor int64) (domain.PaymentStatus, error) {
	s.Calls++
	s.LastAmount = amountMinor
	s.LastMethod = method
	return s.Status, s.Err
}

var _ domain.PaymentAuthorizer = (*StubAuthorizer)(nil)

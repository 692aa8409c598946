package order

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Service — чтение заказов и административная смена статуса.
type Service struct {
	orders domain.OrderRepository
	outbox domain.OutboxRepository
	logger *log.Entry
}

// NewService создаёт сервис заказов. Outbox опционален: без него смена
// статуса не порождает событий.
func NewService(orders domain.OrderRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{orders: orders, outbox: outbox, logger: logger}
}

// Get возвращает заказ пользователя. Чужой заказ неотличим от несуществующего.
func (s *Service) Get(userID, orderID string) (domain.Order, error) {
	ord, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if ord.UserID != userID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return ord, nil
}

// ListByUser возвращает заказы пользователя, новые первыми.
func (s *Service) ListByUser(userID string, limit, offset int) ([]domain.Order, error) {
	if userID == "" {
		return nil, domain.ErrUserRequired
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.ListByUser(userID, limit, offset)
}

// ListAll возвращает заказы всех пользователей, новые первыми. Доступно
// только администратору, авторизация проверяется на транспортном уровне.
func (s *Service) ListAll(filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrOrderStatusInvalid
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.orders.ListAll(filter)
}

// SetStatus меняет статус заказа. Доступно только администратору,
// авторизация проверяется на транспортном уровне.
func (s *Service) SetStatus(orderID string, status domain.OrderStatus) error {
	if !status.Valid() {
		return domain.ErrOrderStatusInvalid
	}
	if err := s.orders.SetStatus(orderID, status); err != nil {
		return err
	}
	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"status":   status,
	}).Info("order status updated")
	s.emitStatusChanged(orderID, status)
	return nil
}

// emitStatusChanged кладёт событие order.status_changed в transactional
// outbox. Ошибка записи не откатывает уже применённый статус.
func (s *Service) emitStatusChanged(orderID string, status domain.OrderStatus) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"order_id": orderID,
		"status":   string(status),
		"ts":       time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("marshal order.status_changed failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   orderID,
		EventType:     "order.status_changed",
		Payload:       payload,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("enqueue order.status_changed failed")
	}
}

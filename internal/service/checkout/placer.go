package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// PlaceOrderInput — параметры оформления заказа из корзины.
type PlaceOrderInput struct {
	UserID         string
	PaymentMethod  domain.PaymentMethod
	PaymentDetails domain.PaymentDetails
	Notes          string
}

// PlaceOrderResult — результат успешного оформления.
type PlaceOrderResult struct {
	OrderID       string
	SubtotalMinor int64
	TaxMinor      int64
	TotalMinor    int64
	PaymentStatus domain.PaymentStatus
}

// Placer оформляет заказ из корзины пользователя: снимок корзины, расчёт цен
// по текущему каталогу, авторизация платежа и атомарный commit (списание
// остатков, вставка заказа, очистка корзины).
type Placer struct {
	cart     domain.CartRepository
	catalog  domain.CatalogRepository
	store    domain.CheckoutStore
	payments domain.PaymentAuthorizer
	outbox   domain.OutboxRepository
	logger   *log.Entry
	metrics  *metrics.CheckoutMetrics
}

// NewPlacer создаёт рабочий экземпляр Placer.
func NewPlacer(
	cart domain.CartRepository,
	catalog domain.CatalogRepository,
	store domain.CheckoutStore,
	payments domain.PaymentAuthorizer,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Placer {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Placer{
		cart:     cart,
		catalog:  catalog,
		store:    store,
		payments: payments,
		outbox:   outbox,
		logger:   logger,
		metrics:  metrics.NewCheckoutMetrics(),
	}
}

// NewPlacerWithoutMetrics создаёт Placer без метрик (для тестов).
func NewPlacerWithoutMetrics(
	cart domain.CartRepository,
	catalog domain.CatalogRepository,
	store domain.CheckoutStore,
	payments domain.PaymentAuthorizer,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Placer {
	placer := NewPlacer(cart, catalog, store, payments, outbox, logger)
	placer.metrics = nil
	return placer
}

// PlaceOrder выполняет оформление заказа целиком. До commit состояние не
// меняется: отказ платежа или нехватка остатка не оставляют следов.
func (p *Placer) PlaceOrder(ctx context.Context, input PlaceOrderInput) (PlaceOrderResult, error) {
	start := time.Now()
	if p.metrics != nil {
		p.metrics.RecordCheckoutStarted()
	}
	defer func() {
		if p.metrics != nil {
			p.metrics.RecordCheckoutFinished()
			p.metrics.RecordCheckoutDuration(time.Since(start))
		}
	}()

	logger := p.logger.WithField("user_id", input.UserID)

	if input.UserID == "" {
		return PlaceOrderResult{}, p.fail(logger, "invalid_input", domain.ErrUserRequired)
	}
	if !input.PaymentMethod.Valid() {
		return PlaceOrderResult{}, p.fail(logger, "invalid_input", domain.ErrPaymentMethodInvalid)
	}

	cartLines, err := p.cart.ListByUser(input.UserID)
	if err != nil {
		return PlaceOrderResult{}, p.fail(logger, "cart_read", err)
	}
	if len(cartLines) == 0 {
		return PlaceOrderResult{}, p.fail(logger, "empty_cart", domain.ErrEmptyCart)
	}

	// Снимок цен: позиции заказа фиксируют цену на момент оформления.
	now := time.Now().UTC()
	orderLines := make([]domain.OrderLine, 0, len(cartLines))
	for _, line := range cartLines {
		item, err := p.catalog.Get(line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return PlaceOrderResult{}, p.fail(logger, "product_unavailable", &domain.ProductUnavailableError{ProductID: line.ProductID})
			}
			return PlaceOrderResult{}, p.fail(logger, "catalog_read", err)
		}
		if !item.Active {
			return PlaceOrderResult{}, p.fail(logger, "product_unavailable", &domain.ProductUnavailableError{ProductID: item.ID})
		}
		if !item.HasStock(line.Qty) {
			return PlaceOrderResult{}, p.fail(logger, "insufficient_stock", &domain.InsufficientStockError{
				ProductID: item.ID,
				Requested: line.Qty,
				Available: item.StockQty,
			})
		}

		unitPrice, err := domain.ResolveUnitPrice(item, line.Customization)
		if err != nil {
			return PlaceOrderResult{}, p.fail(logger, "unknown_variant", err)
		}

		orderLines = append(orderLines, domain.OrderLine{
			ID:             uuid.NewString(),
			ProductID:      item.ID,
			Qty:            line.Qty,
			UnitPriceMinor: unitPrice,
			Customization:  line.Customization,
			CreatedAt:      now,
		})
	}

	totals := domain.CalcTotals(orderLines)

	// Авторизация выполняется до транзакции: блокировки склада не
	// удерживаются на время внешнего вызова.
	authStart := time.Now()
	paymentStatus, err := p.payments.Authorize(ctx, input.PaymentMethod, input.PaymentDetails, totals.TotalMinor)
	if p.metrics != nil {
		p.metrics.RecordStepDuration("authorize", time.Since(authStart))
	}
	if err != nil {
		return PlaceOrderResult{}, p.fail(logger, "payment_error", err)
	}
	if paymentStatus != domain.PaymentStatusCompleted {
		return PlaceOrderResult{}, p.fail(logger, "payment_declined", domain.ErrPaymentDeclined)
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		UserID:        input.UserID,
		Status:        domain.OrderStatusProcessing,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: paymentStatus,
		SubtotalMinor: totals.SubtotalMinor,
		TaxMinor:      totals.TaxMinor,
		TotalMinor:    totals.TotalMinor,
		Notes:         input.Notes,
		Lines:         orderLines,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		return PlaceOrderResult{}, p.fail(logger, "invalid_order", errs[0])
	}

	commitStart := time.Now()
	err = p.store.WithinCheckout(ctx, func(tx domain.CheckoutTx) error {
		// Авторитетное списание: выполняется под транзакцией и может
		// отказать, даже если советующая проверка выше прошла.
		for _, line := range order.Lines {
			if err := tx.ReserveStock(line.ProductID, line.Qty); err != nil {
				return err
			}
		}
		if err := tx.InsertOrder(order); err != nil {
			return err
		}
		return tx.ClearCart(order.UserID)
	})
	if p.metrics != nil {
		p.metrics.RecordStepDuration("commit", time.Since(commitStart))
	}
	if err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			return PlaceOrderResult{}, p.fail(logger, "insufficient_stock", err)
		}
		return PlaceOrderResult{}, p.fail(logger, "commit_failed", err)
	}

	p.emitOrderCreated(order)

	if p.metrics != nil {
		p.metrics.RecordCheckoutCompleted()
	}
	logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"total_minor": order.TotalMinor,
		"lines":       len(order.Lines),
	}).Info("order placed")

	return PlaceOrderResult{
		OrderID:       order.ID,
		SubtotalMinor: order.SubtotalMinor,
		TaxMinor:      order.TaxMinor,
		TotalMinor:    order.TotalMinor,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

func (p *Placer) fail(logger *log.Entry, reason string, err error) error {
	if p.metrics != nil {
		p.metrics.RecordCheckoutFailed(reason)
	}
	logger.WithError(err).WithField("reason", reason).Warn("checkout failed")
	return err
}

// emitOrderCreated кладёт событие order.created в transactional outbox.
// Ошибка записи не откатывает уже зафиксированный заказ.
func (p *Placer) emitOrderCreated(order domain.Order) {
	if p.outbox == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"order_id":       order.ID,
		"user_id":        order.UserID,
		"status":         string(order.Status),
		"payment_status": string(order.PaymentStatus),
		"total_minor":    order.TotalMinor,
		"lines":          len(order.Lines),
		"ts":             order.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		p.logger.WithError(err).WithField("order_id", order.ID).Error("marshal order.created failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     "order.created",
		Payload:       payload,
	}
	if _, err := p.outbox.Enqueue(msg); err != nil {
		p.logger.WithError(err).WithField("order_id", order.ID).Error("enqueue order.created failed")
		return
	}
	if p.metrics != nil {
		p.metrics.RecordOutboxEvent()
	}
}

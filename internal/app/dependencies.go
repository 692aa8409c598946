package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
	"github.com/vladislavdragonenkov/storefront/internal/service/payment"
)

// Dependencies содержит собранные сервисы приложения.
type Dependencies struct {
	Catalog *catalog.Service
	Cart    *cart.Service
	Orders  *order.Service
	Placer  *checkout.Placer

	OutboxRepo      domain.OutboxRepository
	IdempotencyRepo domain.IdempotencyRepository
	PaymentSvc      domain.PaymentAuthorizer
	Logger          *log.Entry
}

// NewDependencies собирает сервисы поверх in-memory хранилища с демо-каталогом.
// NOTE: платёжный авторизатор — mock; в production окружении он заменяется
// клиентом реального платёжного провайдера.
func NewDependencies(logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	return newDependenciesFrom(initMemoryDependencies(logger), logger)
}

// newDependenciesFrom собирает сервисы поверх готового набора хранилищ.
func newDependenciesFrom(rt *runtimeDependencies, logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	paymentSvc := payment.NewMockAuthorizer(logger.WithField("component", "payment"))

	return &Dependencies{
		Catalog: catalog.NewService(rt.catalogRepo, rt.orderRepo, logger.WithField("component", "catalog")),
		Cart:    cart.NewService(rt.cartRepo, rt.catalogRepo, rt.orderRepo, logger.WithField("component", "cart")),
		Orders:  order.NewService(rt.orderRepo, rt.outboxRepo, logger.WithField("component", "orders")),
		Placer: checkout.NewPlacer(
			rt.cartRepo,
			rt.catalogRepo,
			rt.checkoutStore,
			paymentSvc,
			rt.outboxRepo,
			logger.WithField("component", "checkout"),
		),
		OutboxRepo:      rt.outboxRepo,
		IdempotencyRepo: rt.idempotencyRepo,
		PaymentSvc:      paymentSvc,
		Logger:          logger,
	}
}

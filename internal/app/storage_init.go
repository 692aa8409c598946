package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// runtimeDependencies — набор хранилищ, собранный под выбранный драйвер.
type runtimeDependencies struct {
	catalogRepo     domain.CatalogRepository
	cartRepo        domain.CartRepository
	orderRepo       domain.OrderRepository
	outboxRepo      domain.OutboxRepository
	idempotencyRepo domain.IdempotencyRepository
	checkoutStore   domain.CheckoutStore

	// pgStore не nil только для postgres-драйвера; используется для
	// health-проверки и закрытия пула.
	pgStore *postgres.Store
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	if d.pgStore == nil {
		return
	}
	if err := d.pgStore.Close(); err != nil {
		logger.WithError(err).Warn("failed to close postgres store")
	}
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		return initMemoryDependencies(logger), nil
	case StorageDriverPostgres:
		return initPostgresDependencies(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

func initMemoryDependencies(logger *log.Entry) *runtimeDependencies {
	catalogRepo := memory.NewCatalogRepository()
	cartRepo := memory.NewCartRepository()
	orderRepo := memory.NewOrderRepository()
	seedDemoCatalog(catalogRepo)

	logger.Info("initialized in-memory storage with demo catalog")

	return &runtimeDependencies{
		catalogRepo:     catalogRepo,
		cartRepo:        cartRepo,
		orderRepo:       orderRepo,
		outboxRepo:      memory.NewOutboxRepository(),
		idempotencyRepo: memory.NewIdempotencyRepository(),
		checkoutStore:   memory.NewCheckoutStore(catalogRepo, cartRepo, orderRepo),
	}
}

func initPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres storage driver requires a DSN")
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("postgres migrations applied")
	}

	logger.Info("initialized postgres storage")

	return &runtimeDependencies{
		catalogRepo:     postgres.NewCatalogRepository(store),
		cartRepo:        postgres.NewCartRepository(store),
		orderRepo:       postgres.NewOrderRepository(store),
		outboxRepo:      postgres.NewOutboxRepository(store),
		idempotencyRepo: postgres.NewIdempotencyRepository(store),
		checkoutStore:   postgres.NewCheckoutStore(store),
		pgStore:         store,
	}, nil
}

// seedDemoCatalog наполняет in-memory каталог небольшим меню, чтобы API
// было пригодно для разработки и демонстраций без базы данных.
func seedDemoCatalog(catalog *memory.CatalogRepository) {
	catalog.SeedCategory(domain.Category{ID: "cat-coffee", Name: "Coffee", Active: true})
	catalog.SeedCategory(domain.Category{ID: "cat-tea", Name: "Tea", Active: true})
	catalog.SeedCategory(domain.Category{ID: "cat-pastry", Name: "Pastry", Active: true})

	catalog.SeedItem(domain.CatalogItem{
		ID: "prod-latte", CategoryID: "cat-coffee", Name: "Latte",
		Description: "Espresso with steamed milk", BasePriceMinor: 450, StockQty: 50, Active: true,
		Variants: []domain.Variant{
			{ID: "latte-size-m", ProductID: "prod-latte", Type: domain.VariantTypeSize, Name: "Medium", PriceModifierMinor: 0, Active: true},
			{ID: "latte-size-l", ProductID: "prod-latte", Type: domain.VariantTypeSize, Name: "Large", PriceModifierMinor: 100, Active: true},
			{ID: "latte-milk-oat", ProductID: "prod-latte", Type: domain.VariantTypeMilk, Name: "Oat milk", PriceModifierMinor: 75, Active: true},
		},
	})
	catalog.SeedItem(domain.CatalogItem{
		ID: "prod-espresso", CategoryID: "cat-coffee", Name: "Espresso",
		Description: "Double shot", BasePriceMinor: 300, StockQty: 80, Active: true,
	})
	catalog.SeedItem(domain.CatalogItem{
		ID: "prod-matcha", CategoryID: "cat-tea", Name: "Matcha Latte",
		Description: "Ceremonial grade matcha", BasePriceMinor: 500, StockQty: 30, Active: true,
		Variants: []domain.Variant{
			{ID: "matcha-milk-oat", ProductID: "prod-matcha", Type: domain.VariantTypeMilk, Name: "Oat milk", PriceModifierMinor: 75, Active: true},
		},
	})
	catalog.SeedItem(domain.CatalogItem{
		ID: "prod-croissant", CategoryID: "cat-pastry", Name: "Butter Croissant",
		BasePriceMinor: 350, StockQty: 25, Active: true,
	})
}

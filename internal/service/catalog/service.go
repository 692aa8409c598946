package catalog

import (
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// DefaultLimit ограничивает размер выдачи, если клиент не задал свой.
const DefaultLimit = 50

// Service — каталог: списки товаров, категории, популярное, персональные
// рекомендации по истории заказов и административное управление товарами.
type Service struct {
	catalog domain.CatalogRepository
	orders  domain.OrderRepository
	logger  *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(catalog domain.CatalogRepository, orders domain.OrderRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{
		catalog: catalog,
		orders:  orders,
		logger:  logger,
	}
}

// Get возвращает товар вместе с вариантами.
func (s *Service) Get(id string) (domain.CatalogItem, error) {
	if id == "" {
		return domain.CatalogItem{}, domain.ErrProductRequired
	}
	return s.catalog.Get(id)
}

// List возвращает активные товары по фильтру.
func (s *Service) List(filter domain.CatalogFilter) ([]domain.CatalogItem, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.catalog.List(filter)
}

// Categories возвращает активные категории.
func (s *Service) Categories() ([]domain.Category, error) {
	return s.catalog.Categories()
}

// Popular возвращает товары, отсортированные по числу заказанных единиц.
func (s *Service) Popular(limit int) ([]domain.CatalogItem, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.catalog.ListPopular(limit)
}

// Recommendations подбирает товары по истории заказов пользователя: берутся
// категории ранее заказанных товаров, сами заказанные товары исключаются.
// Без истории (или когда подборка пуста) возвращается популярное.
func (s *Service) Recommendations(userID string, limit int) ([]domain.CatalogItem, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if userID == "" {
		return s.catalog.ListPopular(limit)
	}

	orders, err := s.orders.ListByUser(userID, 0, 0)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return s.catalog.ListPopular(limit)
	}

	seenProducts := make(map[string]struct{})
	seenCategories := make(map[string]struct{})
	var productIDs, categoryIDs []string

	for _, order := range orders {
		for _, line := range order.Lines {
			if _, ok := seenProducts[line.ProductID]; ok {
				continue
			}
			seenProducts[line.ProductID] = struct{}{}
			productIDs = append(productIDs, line.ProductID)

			item, err := s.catalog.Get(line.ProductID)
			if err != nil {
				// Товар мог исчезнуть из каталога; история от этого не ломается.
				continue
			}
			if item.CategoryID == "" {
				continue
			}
			if _, ok := seenCategories[item.CategoryID]; ok {
				continue
			}
			seenCategories[item.CategoryID] = struct{}{}
			categoryIDs = append(categoryIDs, item.CategoryID)
		}
	}

	if len(categoryIDs) == 0 {
		return s.catalog.ListPopular(limit)
	}

	items, err := s.catalog.ListByCategories(categoryIDs, productIDs, limit)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		s.logger.WithField("user_id", userID).Debug("no category recommendations, falling back to popular")
		return s.catalog.ListPopular(limit)
	}
	return items, nil
}

// Create добавляет товар в каталог. Идентификатор присваивается сервисом,
// новый товар сразу активен.
func (s *Service) Create(item domain.CatalogItem) (domain.CatalogItem, error) {
	if strings.TrimSpace(item.Name) == "" {
		return domain.CatalogItem{}, domain.ErrProductNameRequired
	}
	if item.CategoryID == "" {
		return domain.CatalogItem{}, domain.ErrCategoryRequired
	}
	if item.BasePriceMinor < 0 {
		return domain.CatalogItem{}, domain.ErrPriceInvalid
	}
	if item.StockQty < 0 {
		return domain.CatalogItem{}, domain.ErrStockInvalid
	}

	item.ID = uuid.NewString()
	item.Active = true
	item.Variants = nil
	if err := s.catalog.CreateItem(item); err != nil {
		return domain.CatalogItem{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": item.ID,
		"name":       item.Name,
	}).Info("product created")
	return item, nil
}

// Update применяет частичное обновление товара: меняются только переданные поля.
func (s *Service) Update(id string, update domain.CatalogItemUpdate) error {
	if id == "" {
		return domain.ErrProductRequired
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return domain.ErrProductNameRequired
	}
	if update.BasePriceMinor != nil && *update.BasePriceMinor < 0 {
		return domain.ErrPriceInvalid
	}
	if update.StockQty != nil && *update.StockQty < 0 {
		return domain.ErrStockInvalid
	}

	if err := s.catalog.UpdateItem(id, update); err != nil {
		return err
	}

	s.logger.WithField("product_id", id).Info("product updated")
	return nil
}

// Deactivate снимает товар с продажи, не удаляя его из истории заказов.
func (s *Service) Deactivate(id string) error {
	if id == "" {
		return domain.ErrProductRequired
	}

	if err := s.catalog.DeactivateItem(id); err != nil {
		return err
	}

	s.logger.WithField("product_id", id).Info("product deactivated")
	return nil
}

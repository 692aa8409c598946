package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CatalogRepository — in-memory реализация каталога для локальной разработки
// и тестов. Остаток товара мутируется только через CheckoutStore.
type CatalogRepository struct {
	mu         sync.RWMutex
	items      map[string]domain.CatalogItem
	categories map[string]domain.Category
	// ordered — число заказанных единиц по товару, основа сортировки ListPopular.
	ordered map[string]int64
}

// NewCatalogRepository возвращает пустой in-memory каталог.
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		items:      make(map[string]domain.CatalogItem),
		categories: make(map[string]domain.Category),
		ordered:    make(map[string]int64),
	}
}

// SeedCategory сохраняет категорию (upsert). Используется при инициализации.
func (r *CatalogRepository) SeedCategory(category domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[category.ID] = category
}

// SeedItem сохраняет товар целиком (upsert). Используется при инициализации.
func (r *CatalogRepository) SeedItem(item domain.CatalogItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
}

// Get возвращает товар или ErrProductNotFound.
func (r *CatalogRepository) Get(id string) (domain.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return domain.CatalogItem{}, domain.ErrProductNotFound
	}
	return cloneItem(item), nil
}

// List возвращает активные товары по фильтру, отсортированные по имени.
func (r *CatalogRepository) List(filter domain.CatalogFilter) ([]domain.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))

	result := make([]domain.CatalogItem, 0, len(r.items))
	for _, item := range r.items {
		if !item.Active {
			continue
		}
		if filter.CategoryID != "" && item.CategoryID != filter.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) &&
			!strings.Contains(strings.ToLower(item.Description), search) {
			continue
		}
		result = append(result, cloneItem(item))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})

	return paginate(result, filter.Limit, filter.Offset), nil
}

// ListPopular возвращает активные товары, отсортированные по числу
// заказанных единиц (по убыванию).
func (r *CatalogRepository) ListPopular(limit int) ([]domain.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.CatalogItem, 0, len(r.items))
	for _, item := range r.items {
		if item.Active {
			result = append(result, cloneItem(item))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		oi, oj := r.ordered[result[i].ID], r.ordered[result[j].ID]
		if oi != oj {
			return oi > oj
		}
		return result[i].ID < result[j].ID
	})

	return paginate(result, limit, 0), nil
}

// ListByCategories возвращает активные товары указанных категорий, исключая
// перечисленные идентификаторы.
func (r *CatalogRepository) ListByCategories(categoryIDs, excludeProductIDs []string, limit int) ([]domain.CatalogItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wantCategory := make(map[string]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		wantCategory[id] = struct{}{}
	}
	exclude := make(map[string]struct{}, len(excludeProductIDs))
	for _, id := range excludeProductIDs {
		exclude[id] = struct{}{}
	}

	result := make([]domain.CatalogItem, 0, len(r.items))
	for _, item := range r.items {
		if !item.Active {
			continue
		}
		if _, skip := exclude[item.ID]; skip {
			continue
		}
		if _, ok := wantCategory[item.CategoryID]; !ok {
			continue
		}
		result = append(result, cloneItem(item))
	}

	sort.Slice(result, func(i, j int) bool {
		oi, oj := r.ordered[result[i].ID], r.ordered[result[j].ID]
		if oi != oj {
			return oi > oj
		}
		return result[i].ID < result[j].ID
	})

	return paginate(result, limit, 0), nil
}

// Categories возвращает активные категории, отсортированные по имени.
func (r *CatalogRepository) Categories() ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		if category.Active {
			result = append(result, category)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// CheckAvailable — советующая проверка остатка без побочных эффектов.
func (r *CatalogRepository) CheckAvailable(productID string, qty int32) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[productID]
	if !ok {
		return false, domain.ErrProductNotFound
	}
	return item.Active && item.HasStock(qty), nil
}

// CreateItem сохраняет новый товар или возвращает ErrProductAlreadyExists.
func (r *CatalogRepository) CreateItem(item domain.CatalogItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return domain.ErrProductAlreadyExists
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = cloneItem(item)
	return nil
}

// UpdateItem применяет частичное обновление товара.
func (r *CatalogRepository) UpdateItem(id string, update domain.CatalogItemUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.BasePriceMinor != nil {
		item.BasePriceMinor = *update.BasePriceMinor
	}
	if update.CategoryID != nil {
		item.CategoryID = *update.CategoryID
	}
	if update.ImageURL != nil {
		item.ImageURL = *update.ImageURL
	}
	if update.StockQty != nil {
		item.StockQty = *update.StockQty
	}
	if update.Active != nil {
		item.Active = *update.Active
	}
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	return nil
}

// DeactivateItem снимает товар с продажи.
func (r *CatalogRepository) DeactivateItem(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	item.Active = false
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = item
	return nil
}

// reserve атомарно списывает остаток. Вызывается только из CheckoutStore.
func (r *CatalogRepository) reserve(productID string, qty int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if !item.Active {
		return &domain.ProductUnavailableError{ProductID: productID}
	}
	if item.StockQty < qty {
		return &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: item.StockQty}
	}
	item.StockQty -= qty
	r.items[productID] = item
	r.ordered[productID] += int64(qty)
	return nil
}

// release возвращает остаток обратно при откате оформления.
func (r *CatalogRepository) release(productID string, qty int32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[productID]
	if !ok {
		return
	}
	item.StockQty += qty
	r.items[productID] = item
	r.ordered[productID] -= int64(qty)
}

func cloneItem(item domain.CatalogItem) domain.CatalogItem {
	item.Variants = append([]domain.Variant(nil), item.Variants...)
	return item
}

func paginate(items []domain.CatalogItem, limit, offset int) []domain.CatalogItem {
	if offset > 0 {
		if offset >= len(items) {
			return []domain.CatalogItem{}
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

var _ domain.CatalogRepository = (*CatalogRepository)(nil)

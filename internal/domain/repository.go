package domain

// CatalogFilter ограничивает выборку товаров каталога.
type CatalogFilter struct {
	CategoryID string
	Search     string
	Limit      int
	Offset     int
}

// CatalogItemUpdate — частичное обновление товара: применяются только
// ненулевые поля, остальные сохраняют прежнее значение.
type CatalogItemUpdate struct {
	Name           *string
	Description    *string
	BasePriceMinor *int64
	CategoryID     *string
	ImageURL       *string
	StockQty       *int32
	Active         *bool
}

// CatalogRepository описывает хранилище каталога. Чтение доступно всем
// слоям; админские мутации (создание, обновление, деактивация) идут через
// CreateItem/UpdateItem/DeactivateItem, а резервирование остатка при
// оформлении заказа — только через CheckoutTx.
type CatalogRepository interface {
	// Get возвращает товар вместе с вариантами или ErrProductNotFound.
	Get(id string) (CatalogItem, error)
	// List возвращает активные товары по фильтру.
	List(filter CatalogFilter) ([]CatalogItem, error)
	// ListPopular возвращает активные товары, отсортированные по числу заказов.
	ListPopular(limit int) ([]CatalogItem, error)
	// ListByCategories возвращает активные товары указанных категорий,
	// исключая перечисленные идентификаторы.
	ListByCategories(categoryIDs, excludeProductIDs []string, limit int) ([]CatalogItem, error)
	// Categories возвращает активные категории.
	Categories() ([]Category, error)
	// CheckAvailable — советующая проверка остатка: true, если остаток >= qty.
	// Без побочных эффектов; авторитетное списание делает CheckoutTx.
	CheckAvailable(productID string, qty int32) (bool, error)
	// CreateItem сохраняет новый товар. Возвращает ErrProductAlreadyExists
	// при конфликте ID.
	CreateItem(item CatalogItem) error
	// UpdateItem применяет частичное обновление или возвращает ErrProductNotFound.
	UpdateItem(id string, update CatalogItemUpdate) error
	// DeactivateItem снимает товар с продажи (soft delete).
	DeactivateItem(id string) error
}

// CartRepository описывает хранилище позиций корзины. Корзина изолирована
// по пользователю.
type CartRepository interface {
	// ListByUser возвращает позиции корзины пользователя.
	ListByUser(userID string) ([]CartLine, error)
	// GetLine возвращает позицию по идентификатору или ErrCartLineNotFound.
	GetLine(userID, lineID string) (CartLine, error)
	// FindLine ищет позицию с тем же товаром и кастомизацией (для слияния).
	FindLine(userID, productID, customizationKey string) (CartLine, error)
	// Insert сохраняет новую позицию.
	Insert(line CartLine) error
	// UpdateQty меняет количество существующей позиции.
	UpdateQty(userID, lineID string, qty int32) error
	// Delete удаляет позицию.
	Delete(userID, lineID string) error
	// Clear удаляет все позиции пользователя.
	Clear(userID string) error
}

// OrderFilter ограничивает административную выборку заказов.
type OrderFilter struct {
	Status OrderStatus
	Limit  int
	Offset int
}

// OrderRepository описывает требования к хранилищу заказов. Создание заказа
// в рамках оформления идёт через CheckoutTx; Create используется для
// административных сценариев и тестовых фикстур.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ErrOrderAlreadyExists при конфликте ID.
	Create(order Order) error
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByUser возвращает заказы пользователя, новые первыми.
	ListByUser(userID string, limit, offset int) ([]Order, error)
	// ListAll возвращает заказы всех пользователей по фильтру, новые первыми.
	ListAll(filter OrderFilter) ([]Order, error)
	// SetStatus меняет статус заказа; содержимое заказа неизменяемо.
	SetStatus(id string, status OrderStatus) error
}

package cart

import (
	"errors"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// LineView — позиция корзины с ценой, вычисленной по текущему каталогу.
type LineView struct {
	Line           domain.CartLine
	ProductName    string
	UnitPriceMinor int64
	LineTotalMinor int64
	// Unavailable — товар снят с продажи или удалён; позиция показывается,
	// но в суммы не входит и оформление с ней не пройдёт.
	Unavailable bool
}

// View — корзина целиком с итоговыми суммами.
type View struct {
	Lines         []LineView
	ItemCount     int32
	SubtotalMinor int64
	TaxMinor      int64
	TotalMinor    int64
}

// Service управляет корзиной: добавление с объединением одинаковых позиций,
// изменение количества, удаление и повтор прошлого заказа.
type Service struct {
	cart    domain.CartRepository
	catalog domain.CatalogRepository
	orders  domain.OrderRepository
	logger  *log.Entry
}

// NewService создаёт сервис корзины.
func NewService(cart domain.CartRepository, catalog domain.CatalogRepository, orders domain.OrderRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &Service{
		cart:    cart,
		catalog: catalog,
		orders:  orders,
		logger:  logger,
	}
}

// View возвращает корзину пользователя с актуальными ценами.
func (s *Service) View(userID string) (View, error) {
	if userID == "" {
		return View{}, domain.ErrUserRequired
	}

	lines, err := s.cart.ListByUser(userID)
	if err != nil {
		return View{}, err
	}

	view := View{Lines: make([]LineView, 0, len(lines))}
	for _, line := range lines {
		lv := LineView{Line: line}

		item, err := s.catalog.Get(line.ProductID)
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			lv.Unavailable = true
		case err != nil:
			return View{}, err
		case !item.Active:
			lv.ProductName = item.Name
			lv.Unavailable = true
		default:
			lv.ProductName = item.Name
			price, err := domain.ResolveUnitPrice(item, line.Customization)
			if err != nil {
				// Вариант исчез из каталога: позиция остаётся видимой,
				// но оформить её нельзя.
				lv.Unavailable = true
				break
			}
			lv.UnitPriceMinor = price
			lv.LineTotalMinor = int64(line.Qty) * price
		}

		if !lv.Unavailable {
			view.ItemCount += line.Qty
			view.SubtotalMinor += lv.LineTotalMinor
		}
		view.Lines = append(view.Lines, lv)
	}

	view.TaxMinor = domain.TaxOn(view.SubtotalMinor)
	view.TotalMinor = view.SubtotalMinor + view.TaxMinor
	return view, nil
}

// Add кладёт товар в корзину. Позиция с тем же товаром и той же
// кастомизацией не дублируется: количества складываются.
func (s *Service) Add(userID, productID string, qty int32, variantIDs []string) (domain.CartLine, error) {
	if userID == "" {
		return domain.CartLine{}, domain.ErrUserRequired
	}
	if productID == "" {
		return domain.CartLine{}, domain.ErrProductRequired
	}
	if qty < 1 {
		return domain.CartLine{}, domain.ErrQtyInvalid
	}

	item, err := s.catalog.Get(productID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if !item.Active {
		return domain.CartLine{}, &domain.ProductUnavailableError{ProductID: productID}
	}

	customization := domain.NewCustomization(variantIDs...)
	for _, id := range customization.VariantIDs() {
		variant, ok := item.VariantByID(id)
		if !ok || !variant.Active {
			return domain.CartLine{}, &domain.UnknownVariantError{ProductID: productID, VariantID: id}
		}
	}

	existing, err := s.cart.FindLine(userID, productID, customization.Key())
	switch {
	case err == nil:
		newQty := existing.Qty + qty
		if !item.HasStock(newQty) {
			return domain.CartLine{}, &domain.InsufficientStockError{ProductID: productID, Requested: newQty, Available: item.StockQty}
		}
		if err := s.cart.UpdateQty(userID, existing.ID, newQty); err != nil {
			return domain.CartLine{}, err
		}
		existing.Qty = newQty
		s.logger.WithFields(log.Fields{
			"user_id": userID,
			"line_id": existing.ID,
			"qty":     newQty,
		}).Debug("cart line merged")
		return existing, nil
	case errors.Is(err, domain.ErrCartLineNotFound):
		if !item.HasStock(qty) {
			return domain.CartLine{}, &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: item.StockQty}
		}
		line := domain.CartLine{
			ID:            uuid.NewString(),
			UserID:        userID,
			ProductID:     productID,
			Qty:           qty,
			Customization: customization,
		}
		if err := s.cart.Insert(line); err != nil {
			return domain.CartLine{}, err
		}
		return line, nil
	default:
		return domain.CartLine{}, err
	}
}

// UpdateQty меняет количество позиции с проверкой остатка.
func (s *Service) UpdateQty(userID, lineID string, qty int32) error {
	if qty < 1 {
		return domain.ErrQtyInvalid
	}

	line, err := s.cart.GetLine(userID, lineID)
	if err != nil {
		return err
	}

	item, err := s.catalog.Get(line.ProductID)
	if err != nil {
		return err
	}
	if !item.HasStock(qty) {
		return &domain.InsufficientStockError{ProductID: line.ProductID, Requested: qty, Available: item.StockQty}
	}

	return s.cart.UpdateQty(userID, lineID, qty)
}

// Remove удаляет позицию корзины.
func (s *Service) Remove(userID, lineID string) error {
	return s.cart.Delete(userID, lineID)
}

// Clear очищает корзину пользователя.
func (s *Service) Clear(userID string) error {
	if userID == "" {
		return domain.ErrUserRequired
	}
	return s.cart.Clear(userID)
}

// Reorder переносит позиции прошлого заказа в корзину. Исчезнувшие товары
// пропускаются, количество молча ограничивается текущим остатком.
func (s *Service) Reorder(userID, orderID string) (View, error) {
	if userID == "" {
		return View{}, domain.ErrUserRequired
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return View{}, err
	}
	// Чужой заказ неотличим от несуществующего.
	if order.UserID != userID {
		return View{}, domain.ErrOrderNotFound
	}

	for _, orderLine := range order.Lines {
		item, err := s.catalog.Get(orderLine.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return View{}, err
		}
		if !item.Active {
			continue
		}

		valid := true
		for _, id := range orderLine.Customization.VariantIDs() {
			variant, ok := item.VariantByID(id)
			if !ok || !variant.Active {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		targetQty := orderLine.Qty
		var existingQty int32
		existing, err := s.cart.FindLine(userID, orderLine.ProductID, orderLine.Customization.Key())
		switch {
		case err == nil:
			existingQty = existing.Qty
		case errors.Is(err, domain.ErrCartLineNotFound):
		default:
			return View{}, err
		}

		targetQty += existingQty
		if targetQty > item.StockQty {
			targetQty = item.StockQty
		}
		if targetQty < 1 {
			continue
		}

		if existingQty > 0 {
			if targetQty != existingQty {
				if err := s.cart.UpdateQty(userID, existing.ID, targetQty); err != nil {
					return View{}, err
				}
			}
			continue
		}

		line := domain.CartLine{
			ID:            uuid.NewString(),
			UserID:        userID,
			ProductID:     orderLine.ProductID,
			Qty:           targetQty,
			Customization: orderLine.Customization,
		}
		if err := s.cart.Insert(line); err != nil {
			return View{}, err
		}
	}

	s.logger.WithFields(log.Fields{
		"user_id":  userID,
		"order_id": orderID,
	}).Info("order moved back to cart")

	return s.View(userID)
}

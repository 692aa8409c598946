package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CheckoutStore — in-memory реализация атомарного оформления заказа.
// Оформления сериализуются одним мьютексом; при ошибке fn выполненные
// мутации компенсируются в обратном порядке.
type CheckoutStore struct {
	mu      sync.Mutex
	catalog *CatalogRepository
	cart    *CartRepository
	orders  *OrderRepository
}

// NewCheckoutStore собирает checkout store поверх in-memory репозиториев.
func NewCheckoutStore(catalog *CatalogRepository, cart *CartRepository, orders *OrderRepository) *CheckoutStore {
	return &CheckoutStore{
		catalog: catalog,
		cart:    cart,
		orders:  orders,
	}
}

// WithinCheckout выполняет fn как одну атомарную единицу.
func (s *CheckoutStore) WithinCheckout(ctx context.Context, fn func(tx domain.CheckoutTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &checkoutTx{store: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// checkoutTx накапливает компенсации для выполненных мутаций.
type checkoutTx struct {
	store *CheckoutStore
	undo  []func()
}

// ReserveStock списывает остаток; при нехватке возвращает
// InsufficientStockError, не меняя состояние.
func (t *checkoutTx) ReserveStock(productID string, qty int32) error {
	if err := t.store.catalog.reserve(productID, qty); err != nil {
		return err
	}
	t.undo = append(t.undo, func() {
		t.store.catalog.release(productID, qty)
	})
	return nil
}

// InsertOrder сохраняет заказ вместе с позициями.
func (t *checkoutTx) InsertOrder(order domain.Order) error {
	if err := t.store.orders.Create(order); err != nil {
		return err
	}
	t.undo = append(t.undo, func() {
		t.store.orders.remove(order.ID)
	})
	return nil
}

// ClearCart удаляет позиции корзины пользователя.
func (t *checkoutTx) ClearCart(userID string) error {
	removed := t.store.cart.clearForCheckout(userID)
	t.undo = append(t.undo, func() {
		t.store.cart.restore(removed)
	})
	return nil
}

// rollback применяет компенсации в обратном порядке.
func (t *checkoutTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

var _ domain.CheckoutStore = (*CheckoutStore)(nil)
var _ domain.CheckoutTx = (*checkoutTx)(nil)

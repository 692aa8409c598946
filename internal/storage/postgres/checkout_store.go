package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const checkoutTimeout = 10 * time.Second

type checkoutStore struct {
	db *sql.DB
}

// NewCheckoutStore создаёт PostgreSQL-реализацию CheckoutStore. Все операции
// фазы commit выполняются в одной транзакции: условное списание остатков,
// вставка заказа и очистка корзины применяются или откатываются вместе.
func NewCheckoutStore(store *Store) domain.CheckoutStore {
	return &checkoutStore{db: store.DB()}
}

func (s *checkoutStore) WithinCheckout(ctx context.Context, fn func(tx domain.CheckoutTx) error) error {
	txCtx, cancel := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("begin checkout tx: %w", err)
	}

	if err := fn(&checkoutTx{ctx: txCtx, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout tx: %w", err)
	}

	return nil
}

type checkoutTx struct {
	ctx context.Context
	tx  *sql.Tx
}

// ReserveStock выполняет условное списание: UPDATE затрагивает строку только
// при достаточном остатке, поэтому конкурирующие оформления последней единицы
// разрешаются на уровне базы без дополнительных блокировок.
func (t *checkoutTx) ReserveStock(productID string, qty int32) error {
	if qty < 1 {
		return domain.ErrQtyInvalid
	}

	res, err := t.tx.ExecContext(t.ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND active
		  AND stock_quantity >= $2
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve stock rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Списание не прошло: уточняем причину для вызывающего кода.
	var (
		stock  int32
		active bool
	)
	err = t.tx.QueryRowContext(t.ctx, `
		SELECT stock_quantity, active
		FROM products
		WHERE id = $1
	`, productID).Scan(&stock, &active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("inspect product after failed reserve: %w", err)
	}
	if !active {
		return &domain.ProductUnavailableError{ProductID: productID}
	}

	return &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: stock}
}

func (t *checkoutTx) InsertOrder(order domain.Order) error {
	return insertOrderTx(t.ctx, t.tx, order)
}

func (t *checkoutTx) ClearCart(userID string) error {
	if _, err := t.tx.ExecContext(t.ctx, `
		DELETE FROM cart_items
		WHERE user_id = $1
	`, userID); err != nil {
		return fmt.Errorf("clear cart in checkout: %w", err)
	}

	return nil
}

var (
	_ domain.CheckoutStore = (*checkoutStore)(nil)
	_ domain.CheckoutTx    = (*checkoutTx)(nil)
)

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) ListByUser(userID string) ([]domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, quantity, customization_key, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart rows: %w", err)
	}

	return lines, nil
}

func (r *cartRepository) GetLine(userID, lineID string) (domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.queryLine(ctx, `
		SELECT id, user_id, product_id, quantity, customization_key, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND id = $2
	`, userID, lineID)
}

func (r *cartRepository) FindLine(userID, productID, customizationKey string) (domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.queryLine(ctx, `
		SELECT id, user_id, product_id, quantity, customization_key, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2 AND customization_key = $3
	`, userID, productID, customizationKey)
}

func (r *cartRepository) Insert(line domain.CartLine) error {
	if errs := line.Validate(); len(errs) > 0 {
		return errs[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if line.CreatedAt.IsZero() {
		line.CreatedAt = now
	}
	if line.UpdatedAt.IsZero() {
		line.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (
			id, user_id, product_id, quantity, customization_key, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		line.ID, line.UserID, line.ProductID, line.Qty,
		line.Customization.Key(), line.CreatedAt, line.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCartLineDuplicate
		}
		return fmt.Errorf("insert cart item: %w", err)
	}

	return nil
}

func (r *cartRepository) UpdateQty(userID, lineID string, qty int32) error {
	if qty < 1 {
		return domain.ErrQtyInvalid
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = $3,
		    updated_at = $4
		WHERE user_id = $1 AND id = $2
	`, userID, lineID, qty, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update cart quantity: %w", err)
	}

	return requireAffected(res, domain.ErrCartLineNotFound)
}

func (r *cartRepository) Delete(userID, lineID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE user_id = $1 AND id = $2
	`, userID, lineID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	return requireAffected(res, domain.ErrCartLineNotFound)
}

func (r *cartRepository) Clear(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE user_id = $1
	`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

func (r *cartRepository) queryLine(ctx context.Context, query string, args ...any) (domain.CartLine, error) {
	row := r.db.QueryRowContext(ctx, query, args...)

	line, err := scanCartLine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CartLine{}, domain.ErrCartLineNotFound
		}
		return domain.CartLine{}, err
	}

	return line, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCartLine(row rowScanner) (domain.CartLine, error) {
	var line domain.CartLine
	var customizationKey string

	if err := row.Scan(
		&line.ID, &line.UserID, &line.ProductID, &line.Qty,
		&customizationKey, &line.CreatedAt, &line.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CartLine{}, err
		}
		return domain.CartLine{}, fmt.Errorf("scan cart item: %w", err)
	}
	line.Customization = domain.ParseCustomizationKey(customizationKey)

	return line, nil
}

func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)

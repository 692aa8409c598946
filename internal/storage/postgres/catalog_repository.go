package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository создаёт PostgreSQL-реализацию CatalogRepository.
func NewCatalogRepository(store *Store) domain.CatalogRepository {
	return &catalogRepository{db: store.DB()}
}

func (r *catalogRepository) Get(id string) (domain.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	item, err := r.getTx(ctx, r.db, id)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	variants, err := r.loadVariants(ctx, []string{id})
	if err != nil {
		return domain.CatalogItem{}, err
	}
	item.Variants = variants[id]

	return item, nil
}

func (r *catalogRepository) List(filter domain.CatalogFilter) ([]domain.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, category_id, name, description, base_price_minor,
		       stock_quantity, active, image_url, created_at, updated_at
		FROM products
		WHERE active
	`
	args := []any{}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY name ASC, id ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return r.queryItems(ctx, query, args...)
}

func (r *catalogRepository) ListPopular(limit int) ([]domain.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}

	return r.queryItems(ctx, `
		SELECT p.id, p.category_id, p.name, p.description, p.base_price_minor,
		       p.stock_quantity, p.active, p.image_url, p.created_at, p.updated_at
		FROM products p
		LEFT JOIN order_items oi ON oi.product_id = p.id
		WHERE p.active
		GROUP BY p.id
		ORDER BY COALESCE(SUM(oi.quantity), 0) DESC, p.name ASC
		LIMIT $1
	`, limit)
}

func (r *catalogRepository) ListByCategories(categoryIDs, excludeProductIDs []string, limit int) ([]domain.CatalogItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if len(categoryIDs) == 0 {
		return []domain.CatalogItem{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	if excludeProductIDs == nil {
		excludeProductIDs = []string{}
	}

	return r.queryItems(ctx, `
		SELECT id, category_id, name, description, base_price_minor,
		       stock_quantity, active, image_url, created_at, updated_at
		FROM products
		WHERE active
		  AND category_id = ANY($1)
		  AND NOT (id = ANY($2))
		ORDER BY name ASC, id ASC
		LIMIT $3
	`, categoryIDs, excludeProductIDs, limit)
}

func (r *catalogRepository) Categories() ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, active
		FROM categories
		WHERE active
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

func (r *catalogRepository) CheckAvailable(productID string, qty int32) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		stock  int32
		active bool
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT stock_quantity, active
		FROM products
		WHERE id = $1
	`, productID).Scan(&stock, &active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrProductNotFound
		}
		return false, fmt.Errorf("check product availability: %w", err)
	}

	return active && qty > 0 && stock >= qty, nil
}

func (r *catalogRepository) CreateItem(item domain.CatalogItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	now := time.Now().UTC()
	var categoryID any
	if item.CategoryID != "" {
		categoryID = item.CategoryID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, category_id, name, description, base_price_minor,
			stock_quantity, active, image_url, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		item.ID, categoryID, item.Name, item.Description, item.BasePriceMinor,
		item.StockQty, item.Active, item.ImageURL, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProductAlreadyExists
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r *catalogRepository) UpdateItem(id string, update domain.CatalogItemUpdate) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name             = COALESCE($2, name),
		    description      = COALESCE($3, description),
		    base_price_minor = COALESCE($4, base_price_minor),
		    category_id      = COALESCE($5, category_id),
		    image_url        = COALESCE($6, image_url),
		    stock_quantity   = COALESCE($7, stock_quantity),
		    active           = COALESCE($8, active),
		    updated_at       = $9
		WHERE id = $1
	`,
		id, update.Name, update.Description, update.BasePriceMinor,
		update.CategoryID, update.ImageURL, update.StockQty, update.Active,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	return requireProductAffected(res)
}

func (r *catalogRepository) DeactivateItem(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET active = FALSE,
		    updated_at = $2
		WHERE id = $1
	`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}

	return requireProductAffected(res)
}

func requireProductAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *catalogRepository) getTx(ctx context.Context, q rowQuerier, id string) (domain.CatalogItem, error) {
	var item domain.CatalogItem
	var categoryID sql.NullString

	err := q.QueryRowContext(ctx, `
		SELECT id, category_id, name, description, base_price_minor,
		       stock_quantity, active, image_url, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(
		&item.ID, &categoryID, &item.Name, &item.Description, &item.BasePriceMinor,
		&item.StockQty, &item.Active, &item.ImageURL, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CatalogItem{}, domain.ErrProductNotFound
		}
		return domain.CatalogItem{}, fmt.Errorf("select product: %w", err)
	}
	item.CategoryID = categoryID.String

	return item, nil
}

func (r *catalogRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.CatalogItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CatalogItem, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var item domain.CatalogItem
		var categoryID sql.NullString
		if err := rows.Scan(
			&item.ID, &categoryID, &item.Name, &item.Description, &item.BasePriceMinor,
			&item.StockQty, &item.Active, &item.ImageURL, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		item.CategoryID = categoryID.String
		items = append(items, item)
		ids = append(ids, item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	if len(ids) == 0 {
		return items, nil
	}

	variants, err := r.loadVariants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Variants = variants[items[i].ID]
	}

	return items, nil
}

func (r *catalogRepository) loadVariants(ctx context.Context, productIDs []string) (map[string][]domain.Variant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, variant_type, name, price_modifier_minor, active
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY product_id, variant_type, id
	`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load product variants: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.Variant)
	for rows.Next() {
		var v domain.Variant
		var variantType string
		if err := rows.Scan(&v.ID, &v.ProductID, &variantType, &v.Name, &v.PriceModifierMinor, &v.Active); err != nil {
			return nil, fmt.Errorf("scan product variant: %w", err)
		}
		v.Type = domain.VariantType(variantType)
		result[v.ProductID] = append(result[v.ProductID], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product variants: %w", err)
	}

	return result, nil
}

var _ domain.CatalogRepository = (*catalogRepository)(nil)

package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CartRepository — in-memory реализация корзины для локальной разработки и тестов.
type CartRepository struct {
	mu sync.RWMutex
	// lines — позиции по идентификатору; изоляция по пользователю
	// обеспечивается фильтрацией в каждом методе.
	lines map[string]domain.CartLine
}

// NewCartRepository возвращает пустую in-memory корзину.
func NewCartRepository() *CartRepository {
	return &CartRepository{
		lines: make(map[string]domain.CartLine),
	}
}

// ListByUser возвращает позиции пользователя, старые первыми.
func (r *CartRepository) ListByUser(userID string) ([]domain.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.CartLine, 0, len(r.lines))
	for _, line := range r.lines {
		if line.UserID == userID {
			result = append(result, line)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// GetLine возвращает позицию пользователя или ErrCartLineNotFound.
func (r *CartRepository) GetLine(userID, lineID string) (domain.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	line, ok := r.lines[lineID]
	if !ok || line.UserID != userID {
		return domain.CartLine{}, domain.ErrCartLineNotFound
	}
	return line, nil
}

// FindLine ищет позицию с тем же товаром и кастомизацией.
func (r *CartRepository) FindLine(userID, productID, customizationKey string) (domain.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, line := range r.lines {
		if line.UserID == userID && line.ProductID == productID && line.Customization.Key() == customizationKey {
			return line, nil
		}
	}
	return domain.CartLine{}, domain.ErrCartLineNotFound
}

// Insert сохраняет новую позицию.
func (r *CartRepository) Insert(line domain.CartLine) error {
	if errs := line.Validate(); len(errs) != 0 {
		return errs[0]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if line.CreatedAt.IsZero() {
		line.CreatedAt = now
	}
	line.UpdatedAt = now
	r.lines[line.ID] = line
	return nil
}

// UpdateQty меняет количество существующей позиции.
func (r *CartRepository) UpdateQty(userID, lineID string, qty int32) error {
	if qty < 1 {
		return domain.ErrQtyInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	line, ok := r.lines[lineID]
	if !ok || line.UserID != userID {
		return domain.ErrCartLineNotFound
	}
	line.Qty = qty
	line.UpdatedAt = time.Now().UTC()
	r.lines[lineID] = line
	return nil
}

// Delete удаляет позицию пользователя.
func (r *CartRepository) Delete(userID, lineID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line, ok := r.lines[lineID]
	if !ok || line.UserID != userID {
		return domain.ErrCartLineNotFound
	}
	delete(r.lines, lineID)
	return nil
}

// Clear удаляет все позиции пользователя.
func (r *CartRepository) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clearLocked(userID)
	return nil
}

// clearLocked удаляет позиции пользователя и возвращает снимок для отката.
// Вызывающий обязан держать r.mu.
func (r *CartRepository) clearLocked(userID string) []domain.CartLine {
	removed := make([]domain.CartLine, 0)
	for id, line := range r.lines {
		if line.UserID == userID {
			removed = append(removed, line)
			delete(r.lines, id)
		}
	}
	return removed
}

// clearForCheckout очищает корзину и возвращает снимок удалённых позиций.
// Используется CheckoutStore для компенсации при откате.
func (r *CartRepository) clearForCheckout(userID string) []domain.CartLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearLocked(userID)
}

// restore возвращает позиции в корзину при откате оформления.
func (r *CartRepository) restore(lines []domain.CartLine) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range lines {
		r.lines[line.ID] = line
	}
}

var _ domain.CartRepository = (*CartRepository)(nil)

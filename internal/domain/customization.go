package domain

import (
	"sort"
	"strings"
)

// Customization — выбранный набор вариантов для позиции корзины или заказа.
// Значение нормализовано: идентификаторы отсортированы и уникальны, поэтому
// равенство структурное и не зависит от порядка выбора.
type Customization struct {
	variantIDs []string
}

// NewCustomization строит нормализованную кастомизацию из идентификаторов
// вариантов. Пустые строки и дубликаты отбрасываются.
func NewCustomization(variantIDs ...string) Customization {
	if len(variantIDs) == 0 {
		return Customization{}
	}

	seen := make(map[string]struct{}, len(variantIDs))
	ids := make([]string, 0, len(variantIDs))
	for _, id := range variantIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return Customization{}
	}

	sort.Strings(ids)
	return Customization{variantIDs: ids}
}

// ParseCustomizationKey восстанавливает кастомизацию из канонической строки,
// полученной через Key (используется хранилищем).
func ParseCustomizationKey(key string) Customization {
	if key == "" {
		return Customization{}
	}
	return NewCustomization(strings.Split(key, ",")...)
}

// VariantIDs возвращает копию отсортированного списка идентификаторов.
func (c Customization) VariantIDs() []string {
	if len(c.variantIDs) == 0 {
		return nil
	}
	return append([]string(nil), c.variantIDs...)
}

// IsEmpty сообщает, выбраны ли какие-либо варианты.
func (c Customization) IsEmpty() bool {
	return len(c.variantIDs) == 0
}

// Equal сравнивает кастомизации как множества ссылок на варианты.
func (c Customization) Equal(other Customization) bool {
	if len(c.variantIDs) != len(other.variantIDs) {
		return false
	}
	for i, id := range c.variantIDs {
		if other.variantIDs[i] != id {
			return false
		}
	}
	return true
}

// Key возвращает каноническую строковую форму: отсортированные идентификаторы
// через запятую. Две равные кастомизации всегда дают одинаковый ключ.
func (c Customization) Key() string {
	return strings.Join(c.variantIDs, ",")
}

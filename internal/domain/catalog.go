package domain

import "time"

// VariantType — категория варианта кастомизации. Перечисление открытое:
// каталог может добавлять новые типы без изменения кода.
type VariantType string

const (
	VariantTypeSize  VariantType = "size"
	VariantTypeMilk  VariantType = "milk"
	VariantTypeExtra VariantType = "extra"
)

// Variant описывает один вариант кастомизации товара (например, объём или
// тип молока) с модификатором цены.
type Variant struct {
	ID        string
	ProductID string
	Type      VariantType
	Name      string
	// PriceModifierMinor — знаковая добавка к базовой цене в минимальных
	// денежных единицах (центах).
	PriceModifierMinor int64
	Active             bool
}

// Category — категория каталога.
type Category struct {
	ID     string
	Name   string
	Active bool
}

// CatalogItem описывает товар каталога вместе с его вариантами.
// Ядро оформления заказа читает товар и мутирует только остаток на складе.
type CatalogItem struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	// BasePriceMinor — базовая цена за единицу в минимальных денежных единицах.
	BasePriceMinor int64
	// StockQty — доступный остаток; инвариант: никогда не опускается ниже нуля.
	StockQty  int32
	Active    bool
	ImageURL  string
	Variants  []Variant
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VariantByID возвращает вариант товара по идентификатору.
func (p *CatalogItem) VariantByID(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// HasStock проверяет, хватает ли остатка на запрошенное количество.
// Проверка советующая: авторитетное списание выполняет CheckoutTx.ReserveStock.
func (p *CatalogItem) HasStock(qty int32) bool {
	return qty > 0 && p.StockQty >= qty
}

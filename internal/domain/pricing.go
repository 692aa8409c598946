package domain

// TaxRatePercent — единая налоговая ставка витрины. Мультивалютность и
// налоговые юрисдикции сознательно не поддерживаются.
const TaxRatePercent = 8

// ResolveUnitPrice вычисляет эффективную цену за единицу: базовая цена товара
// плюс модификаторы выбранных вариантов. Чистая функция; ссылка на чужой или
// неактивный вариант — ошибка валидации, а не молчаливый пропуск.
func ResolveUnitPrice(item CatalogItem, customization Customization) (int64, error) {
	price := item.BasePriceMinor
	for _, id := range customization.VariantIDs() {
		variant, ok := item.VariantByID(id)
		if !ok || !variant.Active {
			return 0, &UnknownVariantError{ProductID: item.ID, VariantID: id}
		}
		price += variant.PriceModifierMinor
	}
	return price, nil
}

// TaxOn возвращает налог с подытога: округление round-half-up до цента,
// применяется один раз на уровне итогов, не по позициям.
func TaxOn(subtotalMinor int64) int64 {
	return (subtotalMinor*TaxRatePercent + 50) / 100
}

// Totals — производные суммы заказа в минимальных денежных единицах.
type Totals struct {
	SubtotalMinor int64
	TaxMinor      int64
	TotalMinor    int64
}

// CalcTotals агрегирует подытог по позициям и выводит налог и итог.
func CalcTotals(lines []OrderLine) Totals {
	var subtotal int64
	for _, line := range lines {
		subtotal += int64(line.Qty) * line.UnitPriceMinor
	}
	tax := TaxOn(subtotal)
	return Totals{
		SubtotalMinor: subtotal,
		TaxMinor:      tax,
		TotalMinor:    subtotal + tax,
	}
}

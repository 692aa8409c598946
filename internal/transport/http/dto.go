package http

import (
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
)

type variantDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	PriceModifier float64 `json:"priceModifier"`
}

type productDTO struct {
	ID            string                  `json:"id"`
	CategoryID    string                  `json:"categoryId,omitempty"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	BasePrice     float64                 `json:"basePrice"`
	StockQuantity int32                   `json:"stockQuantity"`
	ImageURL      string                  `json:"imageUrl,omitempty"`
	Variants      map[string][]variantDTO `json:"variants,omitempty"`
}

type categoryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type cartLineDTO struct {
	ID             string   `json:"id"`
	ProductID      string   `json:"productId"`
	ProductName    string   `json:"productName,omitempty"`
	Quantity       int32    `json:"quantity"`
	Customizations []string `json:"customizations,omitempty"`
	UnitPrice      float64  `json:"unitPrice"`
	TotalPrice     float64  `json:"totalPrice"`
	Unavailable    bool     `json:"unavailable,omitempty"`
}

type cartViewDTO struct {
	Items     []cartLineDTO `json:"items"`
	ItemCount int32         `json:"itemCount"`
	Subtotal  float64       `json:"subtotal"`
	Tax       float64       `json:"tax"`
	Total     float64       `json:"total"`
}

type orderLineDTO struct {
	ID             string   `json:"id"`
	ProductID      string   `json:"productId"`
	Quantity       int32    `json:"quantity"`
	UnitPrice      float64  `json:"unitPrice"`
	Customizations []string `json:"customizations,omitempty"`
}

type orderDTO struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	Status        string         `json:"status"`
	PaymentMethod string         `json:"paymentMethod"`
	PaymentStatus string         `json:"paymentStatus"`
	Subtotal      float64        `json:"subtotal"`
	Tax           float64        `json:"tax"`
	Total         float64        `json:"total"`
	Notes         string         `json:"notes,omitempty"`
	Items         []orderLineDTO `json:"items"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func toProductDTO(item domain.CatalogItem) productDTO {
	dto := productDTO{
		ID:            item.ID,
		CategoryID:    item.CategoryID,
		Name:          item.Name,
		Description:   item.Description,
		BasePrice:     money(item.BasePriceMinor),
		StockQuantity: item.StockQty,
		ImageURL:      item.ImageURL,
	}
	if len(item.Variants) > 0 {
		dto.Variants = make(map[string][]variantDTO)
		for _, v := range item.Variants {
			if !v.Active {
				continue
			}
			dto.Variants[string(v.Type)] = append(dto.Variants[string(v.Type)], variantDTO{
				ID:            v.ID,
				Name:          v.Name,
				PriceModifier: money(v.PriceModifierMinor),
			})
		}
	}
	return dto
}

func toProductDTOs(items []domain.CatalogItem) []productDTO {
	dtos := make([]productDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toProductDTO(item))
	}
	return dtos
}

func toCartViewDTO(view cart.View) cartViewDTO {
	dto := cartViewDTO{
		Items:     make([]cartLineDTO, 0, len(view.Lines)),
		ItemCount: view.ItemCount,
		Subtotal:  money(view.SubtotalMinor),
		Tax:       money(view.TaxMinor),
		Total:     money(view.TotalMinor),
	}
	for _, line := range view.Lines {
		dto.Items = append(dto.Items, cartLineDTO{
			ID:             line.Line.ID,
			ProductID:      line.Line.ProductID,
			ProductName:    line.ProductName,
			Quantity:       line.Line.Qty,
			Customizations: line.Line.Customization.VariantIDs(),
			UnitPrice:      money(line.UnitPriceMinor),
			TotalPrice:     money(line.LineTotalMinor),
			Unavailable:    line.Unavailable,
		})
	}
	return dto
}

func toOrderDTO(order domain.Order) orderDTO {
	dto := orderDTO{
		ID:            order.ID,
		UserID:        order.UserID,
		Status:        string(order.Status),
		PaymentMethod: string(order.PaymentMethod),
		PaymentStatus: string(order.PaymentStatus),
		Subtotal:      money(order.SubtotalMinor),
		Tax:           money(order.TaxMinor),
		Total:         money(order.TotalMinor),
		Notes:         order.Notes,
		Items:         make([]orderLineDTO, 0, len(order.Lines)),
		CreatedAt:     order.CreatedAt,
	}
	for _, line := range order.Lines {
		dto.Items = append(dto.Items, orderLineDTO{
			ID:             line.ID,
			ProductID:      line.ProductID,
			Quantity:       line.Qty,
			UnitPrice:      money(line.UnitPriceMinor),
			Customizations: line.Customization.VariantIDs(),
		})
	}
	return dto
}

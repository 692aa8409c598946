package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
)

// ProductsHandler обслуживает чтение каталога и админские мутации товаров.
type ProductsHandler struct {
	catalog *catalog.Service
	logger  *log.Entry
}

// NewProductsHandler создаёт обработчик каталога.
func NewProductsHandler(catalogSvc *catalog.Service, logger *log.Entry) *ProductsHandler {
	if logger == nil {
		logger = log.New().WithField("component", "products_handler")
	}
	return &ProductsHandler{catalog: catalogSvc, logger: logger}
}

func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.CatalogFilter{
		CategoryID: r.URL.Query().Get("category"),
		Search:     r.URL.Query().Get("search"),
		Limit:      queryInt(r, "limit", 0),
		Offset:     queryInt(r, "offset", 0),
	}

	items, err := h.catalog.List(filter)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductDTOs(items))
}

func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(chi.URLParam(r, "productID"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductDTO(item))
}

func (h *ProductsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories()
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	dtos := make([]categoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, categoryDTO{ID: c.ID, Name: c.Name})
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *ProductsHandler) Popular(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Popular(queryInt(r, "limit", 0))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductDTOs(items))
}

func (h *ProductsHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Recommendations(userIDFromContext(r.Context()), queryInt(r, "limit", 0))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductDTOs(items))
}

type createProductRequestDTO struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	BasePrice     float64 `json:"base_price"`
	CategoryID    string  `json:"category_id"`
	ImageURL      string  `json:"image_url"`
	StockQuantity int32   `json:"stock_quantity"`
}

func (h *ProductsHandler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var req createProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	item, err := h.catalog.Create(domain.CatalogItem{
		Name:           req.Name,
		Description:    req.Description,
		BasePriceMinor: minorFromMoney(req.BasePrice),
		CategoryID:     req.CategoryID,
		ImageURL:       req.ImageURL,
		StockQty:       req.StockQuantity,
	})
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"productId": item.ID})
}

type updateProductRequestDTO struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	BasePrice     *float64 `json:"base_price"`
	CategoryID    *string  `json:"category_id"`
	ImageURL      *string  `json:"image_url"`
	StockQuantity *int32   `json:"stock_quantity"`
	IsActive      *bool    `json:"is_active"`
}

func (h *ProductsHandler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var req updateProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	update := domain.CatalogItemUpdate{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		StockQty:    req.StockQuantity,
		Active:      req.IsActive,
	}
	if req.BasePrice != nil {
		minor := minorFromMoney(*req.BasePrice)
		update.BasePriceMinor = &minor
	}

	if err := h.catalog.Update(productID, update); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"productId": productID})
}

func (h *ProductsHandler) AdminDeactivate(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	if err := h.catalog.Deactivate(productID); err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"productId": productID})
}
